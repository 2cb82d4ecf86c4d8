// Package server exposes questionnaire sessions over HTTP.
//
// A browser fills a questionnaire without JavaScript: POST /sessions starts
// a session, GET /sessions/{id} renders it and every form post applies the
// submitted values plus one action before redirecting back.
package server
