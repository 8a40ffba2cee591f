package internal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ------------------- Leaderboard (public) -------------------

// GET /:record_type/:category/:cup
func Leaderboard(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := d.Aggregator.Cup(c.Request.Context(),
			c.Param("record_type"), c.Param("category"), c.Param("cup"))
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ------------------- Self -------------------

func Me(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		getAccount(c, d, id.ID)
	}
}

type accountPatchRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
}

func PatchMe(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		patchAccount(c, d, id.ID, false)
	}
}

func DeleteMe(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		deleteAccount(c, d, id.ID)
	}
}

// POST /new
func SubmitRecord(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		submit(c, d, id.ID)
	}
}

// ------------------- Admin -------------------

func AdminUsers(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := d.Store.ListAccounts(c.Request.Context())
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func AdminGetUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		getAccount(c, d, id)
	}
}

func AdminPatchUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		patchAccount(c, d, id, true)
	}
}

func AdminDeleteUser(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		self, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		if self.ID == id {
			abortWithError(c, d.Log, badRequest("cannot delete yourself"))
			return
		}
		deleteAccount(c, d, id)
	}
}

// POST /admin/user/:id
func AdminSubmitRecord(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		submit(c, d, id)
	}
}

// ------------------- Misc -------------------

func Health(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func RouteNotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, nil, notFound("route not found"))
	}
}

// ------------------- shared -------------------

func getAccount(c *gin.Context, d *Deps, id int64) {
	acc, err := d.Store.AccountByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, d.Log, lookupErr(err, "account not found"))
		return
	}
	c.JSON(http.StatusOK, acc)
}

func patchAccount(c *gin.Context, d *Deps, id int64, allowRole bool) {
	var req accountPatchRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, d.Log, err)
		return
	}

	var p AccountPatch
	if req.Username != nil {
		name, err := checkUsername(*req.Username)
		if err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		p.Username = &name
	}
	if req.Password != nil {
		if err := checkPassword(*req.Password); err != nil {
			abortWithError(c, d.Log, err)
			return
		}
		hash, err := d.Hasher.Hash(*req.Password)
		if err != nil {
			abortWithError(c, d.Log, internalErr(err))
			return
		}
		p.PasswordHash = &hash
	}
	if req.Role != nil {
		if !allowRole {
			abortWithError(c, d.Log, forbidden("role can only be changed by an admin"))
			return
		}
		if !req.Role.Valid() {
			abortWithError(c, d.Log, badRequest("invalid role"))
			return
		}
		p.Role = req.Role
	}

	acc, err := d.Store.UpdateAccount(c.Request.Context(), id, p)
	if errors.Is(err, ErrDuplicate) {
		abortWithError(c, d.Log, conflict("username already exists"))
		return
	}
	if err != nil {
		abortWithError(c, d.Log, lookupErr(err, "account not found"))
		return
	}
	c.JSON(http.StatusOK, acc)
}

func deleteAccount(c *gin.Context, d *Deps, id int64) {
	if err := d.Store.DeleteAccount(c.Request.Context(), id); err != nil {
		abortWithError(c, d.Log, lookupErr(err, "account not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func submit(c *gin.Context, d *Deps, accountID int64) {
	var req NewRecord
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, d.Log, err)
		return
	}
	rec, err := d.Submitter.Submit(c.Request.Context(), accountID, req)
	if err != nil {
		abortWithError(c, d.Log, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
