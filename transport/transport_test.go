package transport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/llmcomms/llmcomms/transport"
)

type fakeTransport struct {
	resp *transport.Response
	err  error
	got  transport.Request
}

func (f *fakeTransport) Send(ctx context.Context, req transport.Request) (*transport.Response, error) {
	f.got = req
	return f.resp, f.err
}

func TestTransportInterfaceRoundTrip(t *testing.T) {
	want := &transport.Response{
		StatusCode: 200,
		Headers:    map[string][]string{"Content-Type": {"application/json"}},
		Body:       `{"ok":true}`,
	}
	ft := &fakeTransport{resp: want}

	var tr transport.Transport = ft
	req := transport.Request{
		URL:     "https://example.test/v1/chat",
		Method:  "POST",
		Headers: map[string]string{"Authorization": "Bearer x"},
		Body:    `{"model":"m"}`,
	}
	got, err := tr.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got != want {
		t.Errorf("Send returned %+v, want the fake's response pointer", got)
	}
	if ft.got.URL != req.URL || ft.got.Body != req.Body {
		t.Errorf("fake received %+v, want %+v", ft.got, req)
	}
}

func TestTransportInterfacePropagatesError(t *testing.T) {
	wantErr := errors.New("connection refused")
	ft := &fakeTransport{err: wantErr}

	var tr transport.Transport = ft
	_, err := tr.Send(context.Background(), transport.Request{URL: "https://example.test"})
	if err != wantErr {
		t.Errorf("Send error = %v, want %v", err, wantErr)
	}
}
