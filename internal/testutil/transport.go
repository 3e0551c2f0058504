// Package testutil provides test doubles shared by the kitty packages.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/stretchr/testify/mock"
)

// Responder produces the outcome of one scripted route.
type Responder func(body any) (*service.Response, error)

// JSON responds with status and v encoded as JSON.
func JSON(status int, v any) Responder {
	return func(any) (*service.Response, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return &service.Response{Status: status, Body: data}, nil
	}
}

// Raw responds with status and a literal body.
func Raw(status int, body string) Responder {
	return func(any) (*service.Response, error) {
		return &service.Response{Status: status, Body: []byte(body)}, nil
	}
}

// Unreachable simulates a transport-level failure.
func Unreachable() Responder {
	return func(any) (*service.Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}
}

// FakeTransport answers from a route table keyed by "METHOD path" and
// records every call. Unknown routes answer 404. It is safe for concurrent use.
type FakeTransport struct {
	routes map[string]Responder
	calls  []string
	bodies []any
	mu     sync.Mutex
}

// NewFakeTransport creates an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{routes: make(map[string]Responder)}
}

// Handle registers a responder for method and path.
func (f *FakeTransport) Handle(method, path string, r Responder) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = r
	return f
}

// Do implements service.Transport.
func (f *FakeTransport) Do(ctx context.Context, method, path string, body any) (*service.Response, error) {
	key := method + " " + path

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies = append(f.bodies, body)
	responder, ok := f.routes[key]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &common.NetworkError{Method: method, Path: path, Err: err}
	}
	if !ok {
		return &service.Response{Status: http.StatusNotFound, Body: []byte(`{"message":"Route not found"}`)}, nil
	}

	resp, err := responder(body)
	if err != nil {
		return nil, &common.NetworkError{Method: method, Path: path, Err: err}
	}
	return resp, nil
}

// Calls returns the "METHOD path" keys in call order.
func (f *FakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times method and path were requested.
func (f *FakeTransport) CallCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

// LastBody returns the body of the most recent call.
func (f *FakeTransport) LastBody() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return nil
	}
	return f.bodies[len(f.bodies)-1]
}

// MockTransport is a testify mock of service.Transport.
type MockTransport struct {
	mock.Mock
}

// Do implements service.Transport.
func (m *MockTransport) Do(ctx context.Context, method, path string, body any) (*service.Response, error) {
	args := m.Called(ctx, method, path, body)
	resp, _ := args.Get(0).(*service.Response)
	return resp, args.Error(1)
}
