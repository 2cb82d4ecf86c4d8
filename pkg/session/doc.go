// Package session keeps questionnaire trees alive between HTTP requests.
//
// A Session owns one tree and serialises every read and mutation behind a
// mutex, so form posts are applied in arrival order. Posts follow the field
// and action protocol of package render: answer values under "a.<key>",
// custom drafts under "custom.<key>" and one "action" button value.
package session
