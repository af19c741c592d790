package httpclient

import "net/http"

// HTTPClient is the subset of *http.Client used by the REST collaborators.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
