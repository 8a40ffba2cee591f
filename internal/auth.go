package internal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Signup(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := bindJSON(c, &req); err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		username, err := checkUsername(req.Username)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		if err := checkPassword(req.Password); err != nil {
			abortWithError(c, d.Log, err)
			return
		}

		hash, err := d.Hasher.Hash(req.Password)
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		acc, err := d.Store.CreateAccount(c.Request.Context(), username, hash, RoleUser)
		if errors.Is(err, ErrDuplicate) {
			abortWithError(c, d.Log, conflict("username already exists"))
			return
		}
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		c.JSON(http.StatusCreated, acc)
	}
}

func Login(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := bindJSON(c, &req); err != nil {
			abortWithError(c, d.Log, err)
			return
		}

		acc, err := d.Store.AccountByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, ErrNotFound) {
			abortWithError(c, d.Log, unauthenticated("invalid credentials"))
			return
		}
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}

		ok, err := d.Hasher.Verify(req.Password, acc.PasswordHash)
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		if !ok {
			abortWithError(c, d.Log, unauthenticated("invalid credentials"))
			return
		}

		tok, err := d.Tokens.Issue(acc.ID, acc.Role)
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": tok})
	}
}
