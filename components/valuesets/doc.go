// Package valuesets serves option searches over FHIR value sets.
//
// A Catalog holds value sets expanded ahead of time (the default catalog is
// embedded under data/valuesets.yaml) and doubles as an options.Fetcher, so
// the same data backs remote option providers and the lookup search
// endpoint. The handler responds to GET and HEAD with
// `{"data":[{"token":..,"label":..}]}` for the url, q and limit parameters.
package valuesets
