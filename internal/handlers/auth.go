package handlers

import (
	"errors"
	"net/http"

	"wake_scheduler/internal/service"

	"github.com/gin-gonic/gin"
)

// signUpTokenHeader carries the shared AUTH_SIGNUP_TOKEN.
const signUpTokenHeader = "X-Signup-Token"

// OperatorCredentials is the payload of both sign-up and sign-in.
type OperatorCredentials struct {
	Username string `json:"username" binding:"required" example:"maintenance"`
	Password string `json:"password" binding:"required" example:"s3cr3t"`
}

// bindJSONOrBadRequest binds the body into dst or writes a 400. It returns
// false when the request was already answered.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Register an operator
// @Description  Open only while no operator exists. Afterwards the caller must be a signed-in operator or send the configured sign-up token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body            body      OperatorCredentials  true   "Credentials"
// @Param        X-Signup-Token  header    string               false  "Shared sign-up token"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input OperatorCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	grant := service.SignUpGrant{
		OperatorID: c.GetInt(operatorIDKey),
		Token:      c.GetHeader(signUpTokenHeader),
	}
	id, err := h.services.SignUp(input.Username, input.Password, grant)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", input.Username, "by_operator", grant.OperatorID, "err", err)
		}
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSignUpClosed) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.log != nil {
		h.log.Infow("operator_registered", "username", input.Username, "id", id)
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Issue an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      OperatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input OperatorCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(input.Username, input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "username", input.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
