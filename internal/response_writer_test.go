package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)

	if rw.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
}

func TestResponseWriter_WriteHeader_OnlyOnce(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusOK)
	rw.WriteHeader(http.StatusNotFound)

	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusOK)
	}
	if w.Code != http.StatusOK {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	n, err := rw.Write([]byte("hello world"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 11 {
		t.Errorf("Write() n = %d, want 11", n)
	}
	if w.Body.String() != "hello world" {
		t.Errorf("body = %q, want %q", w.Body.String(), "hello world")
	}
	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusOK)
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
}

func TestNewResponseWriter_ReusesWrapper(t *testing.T) {
	rw := NewResponseWriter(httptest.NewRecorder())
	if got := NewResponseWriter(rw); got != rw {
		t.Error("NewResponseWriter() wrapped an existing *ResponseWriter")
	}
}

func TestResponseWriter_Unwrap(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)
	if rw.Unwrap() != w {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
