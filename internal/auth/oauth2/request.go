package oauth2

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// Request is the transport-neutral view of an inbound protocol request.
type Request struct {
	Header http.Header
	Query  url.Values
	Body   url.Values
}

// NewRequest parses r. Only form encoded bodies are accepted.
func NewRequest(r *http.Request) (*Request, error) {
	if r.Method == http.MethodPost && !httpx.IsFormContentType(r.Header.Get("Content-Type")) {
		return nil, InvalidRequest("content type must be application/x-www-form-urlencoded")
	}
	if err := r.ParseForm(); err != nil {
		return nil, InvalidRequest("malformed form body")
	}

	return &Request{
		Header: r.Header.Clone(),
		Query:  r.URL.Query(),
		Body:   r.PostForm,
	}, nil
}

func (r *Request) BodyValue(key string) string {
	return strings.TrimSpace(r.Body.Get(key))
}

func (r *Request) QueryValue(key string) string {
	return strings.TrimSpace(r.Query.Get(key))
}

// clientCredentials returns the client id and secret. HTTP Basic is
// preferred over the body fields; the authorization endpoint may also name
// the client in the query, but never its secret.
func (r *Request) clientCredentials() (id, secret string) {
	if id, secret, ok := r.basicAuth(); ok {
		return id, secret
	}

	id = r.BodyValue("client_id")
	secret = r.Body.Get("client_secret")
	if id == "" {
		id = r.QueryValue("client_id")
	}
	return id, secret
}

func (r *Request) basicAuth() (id, secret string, ok bool) {
	scheme, encoded, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	id, secret, found = strings.Cut(string(raw), ":")
	if !found {
		return "", "", false
	}

	// RFC 6749 section 2.3.1 form-encodes both parts before base64
	if v, err := url.QueryUnescape(id); err == nil {
		id = v
	}
	if v, err := url.QueryUnescape(secret); err == nil {
		secret = v
	}
	return id, secret, true
}

// Response is what the server hands back to the transport.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func newResponse(status int) *Response {
	return &Response{StatusCode: status, Header: make(http.Header)}
}

func jsonResponse(status int, v any) *Response {
	resp := newResponse(status)
	resp.Header.Set("Content-Type", "application/json")

	body, err := json.Marshal(v)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		body = []byte(`{"error":"server_error","error_description":"failed to encode response"}`)
	}
	resp.Body = body
	return resp
}

func redirectResponse(location string) *Response {
	resp := newResponse(http.StatusFound)
	resp.Header.Set("Location", location)
	return resp
}

// Write copies the response onto w.
func (r *Response) Write(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}
