package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/pass-management/api"
	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("RequestID", func() {
	It("should reuse an incoming trace id and expose it to the handler", func() {
		var seen string
		h := RequestID(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = TraceID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		Expect(seen).To(Equal("trace-123"))
		Expect(w.Header().Get(TraceHeader)).To(Equal("trace-123"))
	})

	It("should generate one when absent", func() {
		w := httptest.NewRecorder()
		RequestID(nil)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Header().Get(TraceHeader)).To(HaveLen(36))
	})

	It("should return an empty id outside a request", func() {
		Expect(TraceID(context.Background())).To(BeEmpty())
	})
})

var _ = Describe("Logging", func() {
	It("should mask sensitive JSON fields at any depth", func() {
		out := filterBody([]byte(`{"username":"alice","password":"hunter22","nested":{"accessToken":"abc"},"items":[{"secret":"x"}]}`))

		var body map[string]interface{}
		Expect(json.Unmarshal([]byte(out), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("username", "alice"))
		Expect(body).To(HaveKeyWithValue("password", filtered))
		Expect(body["nested"]).To(HaveKeyWithValue("accessToken", filtered))
		Expect(body["items"].([]interface{})[0]).To(HaveKeyWithValue("secret", filtered))
	})

	It("should mask the authorization header", func() {
		headers := http.Header{"Authorization": {"Bearer abc"}, "Accept": {"application/json"}}
		Expect(filterHeaders(headers)).To(Equal(map[string]string{
			"Authorization": filtered,
			"Accept":        "application/json",
		}))
	})

	It("should log status and keep the body readable for the handler", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		var received string
		h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			received = string(b)
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"hunter22"}`))
		req = req.WithContext(logger.Into(req.Context(), lg))
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(received).To(ContainSubstring("hunter22"))
		Expect(buf.String()).To(ContainSubstring(`"status":201`))
		Expect(buf.String()).NotTo(ContainSubstring("hunter22"))
	})
})

var _ = Describe("BodyLimit", func() {
	It("should refuse a declared body over the limit", func() {
		called := false
		h := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/passes", strings.NewReader(strings.Repeat("x", 32))))

		Expect(called).To(BeFalse())
		Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeBodyTooLarge)))
	})

	It("should fail reads past the limit when the length is unknown", func() {
		var readErr error
		h := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/passes", strings.NewReader(strings.Repeat("x", 32)))
		req.ContentLength = -1
		h.ServeHTTP(httptest.NewRecorder(), req)

		var maxErr *http.MaxBytesError
		Expect(errors.As(readErr, &maxErr)).To(BeTrue())
	})

	It("should keep the limit visible to handlers behind debug body logging", func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
		var readErr error
		h := BodyLimit(16)(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		})))

		req := httptest.NewRequest(http.MethodPost, "/api/passes", strings.NewReader(strings.Repeat("x", 32)))
		req.ContentLength = -1
		req = req.WithContext(logger.Into(req.Context(), lg))
		h.ServeHTTP(httptest.NewRecorder(), req)

		var maxErr *http.MaxBytesError
		Expect(errors.As(readErr, &maxErr)).To(BeTrue())
	})

	It("should pass small bodies through", func() {
		w := httptest.NewRecorder()
		BodyLimit(16)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Recovery", func() {
	It("should answer a panic with an internal error envelope", func() {
		h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]).To(HaveKeyWithValue("type", string(internal.ErrorTypeInternal)))
		Expect(body["error"]["message"]).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("CORS", func() {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/passes", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	It("should answer preflights from allowed origins", func() {
		w := preflight(CORS("http://localhost:3000, https://passes.example.com/")(okHandler), "https://passes.example.com")
		Expect(w.Code).To(BeNumerically("<", 300))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://passes.example.com"))
		Expect(w.Header().Get("Access-Control-Max-Age")).To(Equal("600"))
		Expect(w.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
	})

	It("should not grant unknown origins", func() {
		w := preflight(CORS("http://localhost:3000")(okHandler), "https://evil.example.com")
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("should allow any origin with a wildcard", func() {
		w := preflight(CORS("*")(okHandler), "https://anywhere.example.com")
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("should expose the trace header on simple requests", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/passes/my-passes", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		CORS("http://localhost:3000")(okHandler).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(http.CanonicalHeaderKey(w.Header().Get("Access-Control-Expose-Headers"))).To(Equal(http.CanonicalHeaderKey(TraceHeader)))
	})

	It("should add no headers when no origin is configured", func() {
		w := preflight(CORS(" , ")(okHandler), "http://localhost:3000")
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})

var _ = Describe("RequestValidator", func() {
	var h http.Handler

	BeforeEach(func() {
		v, err := NewRequestValidator(context.Background(), api.OpenAPISpec)
		Expect(err).NotTo(HaveOccurred())
		h = v.Middleware(okHandler)
	})

	do := func(method, target, body string) int {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	It("should pass conforming requests", func() {
		Expect(do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret"}`)).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/api/passes/my-passes", "")).To(Equal(http.StatusOK))
		Expect(do(http.MethodPut, "/api/passes/admin/7/reject", "")).To(Equal(http.StatusOK))
	})

	It("should reject missing required fields and wrong types", func() {
		Expect(do(http.MethodPost, "/api/auth/login", `{"username":"alice"}`)).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/api/passes", `{"type":"VISITOR_PASS","purpose":1,"startDate":"a","endDate":"b"}`)).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/api/passes/abc", "")).To(Equal(http.StatusBadRequest))
	})

	It("should let undocumented routes through", func() {
		Expect(do(http.MethodGet, "/api/unknown", "")).To(Equal(http.StatusOK))
	})
})
