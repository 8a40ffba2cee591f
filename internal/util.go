package internal

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const minPasswordLen = 6

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("bad id")
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &Error{Kind: KindBadRequest, Msg: "bad json", Err: err}
	}
	return nil
}

func checkUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", badRequest("username is required")
	}
	return s, nil
}

func checkPassword(s string) error {
	if len(s) < minPasswordLen {
		return badRequest("password too short")
	}
	return nil
}
