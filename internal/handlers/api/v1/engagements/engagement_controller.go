// file: internal/handlers/api/v1/engagements/engagement_controller.go
package engagements

import (
	"net/http"

	"letsconnect/internal/engagement"
	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// URL parameters shared by every engagement route
const (
	ParamID      = "id"
	ParamComment = "commentId"
	ParamReply   = "replyId"
)

// maxCommentBody bounds comment and reply request bodies
const maxCommentBody = 16 << 10

// EngagementController serves likes, shares, comments and replies for one
// content kind. The same controller type is mounted for posts, gallery
// posts and events.
type EngagementController struct {
	service         services.EngagementService
	kind            engagement.Kind
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewEngagementController creates the engagement controller for kind
func NewEngagementController(
	service services.EngagementService,
	kind engagement.Kind,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) *EngagementController {
	return &EngagementController{
		service:         service,
		kind:            kind,
		responseBuilder: responseBuilder,
		logger:          logger.With(zap.String("kind", string(kind))),
	}
}

// Routes registers the engagement endpoints below /{id}
func (c *EngagementController) Routes(r chi.Router) {
	r.Put("/like", c.ToggleLike)
	r.Put("/share", c.Share)
	r.Put("/allow-comments", c.ToggleAllowComments)
	r.Put("/allow-shares", c.ToggleAllowShares)

	r.Get("/comments", c.ListComments)
	r.Post("/comments", c.AddComment)
	r.Route("/comments/{commentId}", func(r chi.Router) {
		r.Put("/", c.EditComment)
		r.Delete("/", c.DeleteComment)
		r.Put("/like", c.ToggleCommentLike)

		r.Post("/replies", c.AddReply)
		r.Put("/replies/{replyId}", c.EditReply)
		r.Delete("/replies/{replyId}", c.DeleteReply)
		r.Put("/replies/{replyId}/like", c.ToggleReplyLike)
	})
}

func (c *EngagementController) target(r *http.Request) services.Target {
	return services.Target{Kind: c.kind, ID: apiutil.Param(r, ParamID)}
}

// mutation is the shape of every engagement call that needs only the caller and target
type mutation func(r *http.Request, pr engagement.Principal, target services.Target) (*services.MessageResponse, error)

// run authenticates, invokes fn and writes its message with status
func (c *EngagementController) run(w http.ResponseWriter, r *http.Request, status int, fn mutation) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := fn(r, pr, c.target(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, status, msg.Message)
}

// ===============================
// ENTITY ENGAGEMENT
// ===============================

// ToggleLike handles PUT /{kind}/{id}/like
func (c *EngagementController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.ToggleLike(r.Context(), pr, t)
	})
}

// Share handles PUT /{kind}/{id}/share
func (c *EngagementController) Share(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.Share(r.Context(), pr, t)
	})
}

// ToggleAllowComments handles PUT /{kind}/{id}/allow-comments
func (c *EngagementController) ToggleAllowComments(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.ToggleAllowComments(r.Context(), pr, t)
	})
}

// ToggleAllowShares handles PUT /{kind}/{id}/allow-shares
func (c *EngagementController) ToggleAllowShares(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.ToggleAllowShares(r.Context(), pr, t)
	})
}

// ListComments handles GET /{kind}/{id}/comments?page=
func (c *EngagementController) ListComments(w http.ResponseWriter, r *http.Request) {
	req, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.service.ListComments(r.Context(), c.target(r), req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteComments(w, r, page)
}

// ===============================
// COMMENTS
// ===============================

// AddComment handles POST /{kind}/{id}/comments
func (c *EngagementController) AddComment(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusCreated, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		var req services.CommentRequest
		if err := apiutil.DecodeJSON(w, r, &req, maxCommentBody); err != nil {
			return nil, err
		}
		return c.service.AddComment(r.Context(), pr, t, &req)
	})
}

// EditComment handles PUT /{kind}/{id}/comments/{commentId}
func (c *EngagementController) EditComment(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		var req services.CommentRequest
		if err := apiutil.DecodeJSON(w, r, &req, maxCommentBody); err != nil {
			return nil, err
		}
		return c.service.EditComment(r.Context(), pr, t, apiutil.Param(r, ParamComment), &req)
	})
}

// DeleteComment handles DELETE /{kind}/{id}/comments/{commentId}
func (c *EngagementController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.DeleteComment(r.Context(), pr, t, apiutil.Param(r, ParamComment))
	})
}

// ToggleCommentLike handles PUT /{kind}/{id}/comments/{commentId}/like
func (c *EngagementController) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.ToggleCommentLike(r.Context(), pr, t, apiutil.Param(r, ParamComment))
	})
}

// ===============================
// REPLIES
// ===============================

// AddReply handles POST /{kind}/{id}/comments/{commentId}/replies
func (c *EngagementController) AddReply(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusCreated, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		var req services.ReplyRequest
		if err := apiutil.DecodeJSON(w, r, &req, maxCommentBody); err != nil {
			return nil, err
		}
		return c.service.AddReply(r.Context(), pr, t, apiutil.Param(r, ParamComment), &req)
	})
}

// EditReply handles PUT /{kind}/{id}/comments/{commentId}/replies/{replyId}
func (c *EngagementController) EditReply(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		var req services.ReplyRequest
		if err := apiutil.DecodeJSON(w, r, &req, maxCommentBody); err != nil {
			return nil, err
		}
		return c.service.EditReply(r.Context(), pr, t, apiutil.Param(r, ParamComment), apiutil.Param(r, ParamReply), &req)
	})
}

// DeleteReply handles DELETE /{kind}/{id}/comments/{commentId}/replies/{replyId}
func (c *EngagementController) DeleteReply(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.DeleteReply(r.Context(), pr, t, apiutil.Param(r, ParamComment), apiutil.Param(r, ParamReply))
	})
}

// ToggleReplyLike handles PUT /{kind}/{id}/comments/{commentId}/replies/{replyId}/like
func (c *EngagementController) ToggleReplyLike(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, http.StatusOK, func(r *http.Request, pr engagement.Principal, t services.Target) (*services.MessageResponse, error) {
		return c.service.ToggleReplyLike(r.Context(), pr, t, apiutil.Param(r, ParamComment), apiutil.Param(r, ParamReply))
	})
}
