package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/authz"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

// currentActor resolves the authenticated user into a policy actor. Writes
// the 401 response itself when the context carries no user.
func currentActor(ctx *gin.Context) (authz.Actor, middleware.AuthenticatedUser, bool) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return authz.Actor{}, middleware.AuthenticatedUser{}, false
	}

	return authz.Actor{ID: user.ID, Role: user.Role}, user, true
}

// authorize runs the policy check and writes the error response on a deny.
// Returns true when the handler may proceed.
func authorize(ctx *gin.Context, actor authz.Actor, action authz.Action, res authz.Resource) bool {
	decision, err := authz.Can(actor, action, res)

	if err != nil {
		log.Printf("Authorization check failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}

	if !decision.Allowed {
		if decision.Reason == authz.ReasonNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": decision.Reason})
		} else {
			ctx.JSON(http.StatusForbidden, gin.H{"error": decision.Reason})
		}
		return false
	}

	return true
}
