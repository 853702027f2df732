package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wake_scheduler/internal/service"

	"github.com/gin-gonic/gin"
)

// echoRouter mounts mw in front of a handler that reports the operator it saw.
func echoRouter(auth *mockAuth, mw func(*Handler) gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{Authorization: auth}, nil)
	r := gin.New()
	r.GET("/echo", mw(h), func(c *gin.Context) {
		id, set := c.Get(operatorIDKey)
		c.JSON(http.StatusOK, gin.H{"operator": id, "set": set})
	})
	return r
}

func required(h *Handler) gin.HandlerFunc { return h.operatorIDMiddleware }
func optional(h *Handler) gin.HandlerFunc { return h.optionalOperatorMiddleware }

type echoResult struct {
	code     int
	operator int
	set      bool
	err      string
}

func callEcho(r *gin.Engine, header string) echoResult {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)

	var body struct {
		Operator int    `json:"operator"`
		Set      bool   `json:"set"`
		Error    string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return echoResult{code: w.Code, operator: body.Operator, set: body.Set, err: body.Error}
}

func TestOperatorMiddlewares(t *testing.T) {
	cases := []struct {
		name     string
		mw       func(*Handler) gin.HandlerFunc
		header   string
		parseErr error
		want     echoResult
	}{
		{name: "required/no header", mw: required, want: echoResult{code: 401, err: errMissingAuthHeader.Error()}},
		{name: "required/wrong scheme", mw: required, header: "Basic dTpw", want: echoResult{code: 401, err: errAuthHeaderFormat.Error()}},
		{name: "required/empty bearer", mw: required, header: "Bearer ", want: echoResult{code: 401, err: errAuthHeaderFormat.Error()}},
		{name: "required/rejected token", mw: required, header: "Bearer old", parseErr: errors.New("expired"), want: echoResult{code: 401, err: errTokenRejected.Error()}},
		{name: "required/valid", mw: required, header: "Bearer tok", want: echoResult{code: 200, operator: 7, set: true}},

		{name: "optional/anonymous", mw: optional, want: echoResult{code: 200}},
		{name: "optional/wrong scheme", mw: optional, header: "Token tok", want: echoResult{code: 401, err: errAuthHeaderFormat.Error()}},
		{name: "optional/rejected token", mw: optional, header: "Bearer old", parseErr: errors.New("expired"), want: echoResult{code: 401, err: errTokenRejected.Error()}},
		{name: "optional/valid", mw: optional, header: "Bearer tok", want: echoResult{code: 200, operator: 7, set: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseID: 7, parseErr: tc.parseErr}
			got := callEcho(echoRouter(auth, tc.mw), tc.header)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOperatorMiddleware_PassesRawToken(t *testing.T) {
	auth := &mockAuth{parseID: 1}
	callEcho(echoRouter(auth, required), "Bearer abc.def.ghi")
	if auth.lastParseToken != "abc.def.ghi" {
		t.Fatalf("ParseToken got %q", auth.lastParseToken)
	}
}
