package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"twoogle/internal/app/board"
	"twoogle/internal/pkg/req"
	"twoogle/internal/pkg/resp"
)

type PostMessageInput struct {
	// Text is the raw post, markers included, exactly as typed in the console.
	Text string `json:"text"`
}

// FeedResponse carries a feed both as data and as the console rendering.
type FeedResponse struct {
	Messages []board.Message `json:"messages"`
	Text     string          `json:"text"`
}

func newFeedResponse(msgs []board.Message) FeedResponse {
	if msgs == nil {
		msgs = []board.Message{}
	}
	return FeedResponse{Messages: msgs, Text: board.FormatFeed(msgs)}
}

// HandlePostMessage parses and stores a new post for the caller.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		var input PostMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Service.Post(r.Context(), sess, input.Text)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"message": msg,
			"line":    board.FormatLine(*msg),
		})
	}
}

// feedHandler adapts a limited feed query to a handler reading ?limit=.
func feedHandler(deps *AppDeps, query func(r *http.Request, limit int) ([]board.Message, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, customErr := req.QueryLimit(r, deps.Service.FeedLimit())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msgs, err := query(r, limit)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, newFeedResponse(msgs))
	}
}

// HandleRecent returns the sectioned recent feed of the caller.
func HandleRecent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, customErr := req.QueryLimit(r, deps.Service.FeedLimit())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		sections, err := deps.Service.Recent(r.Context(), sess, limit)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		text := board.FormatSections(sections)
		for i := range sections {
			if sections[i].Messages == nil {
				sections[i].Messages = []board.Message{}
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"sections": sections,
			"text":     text,
		})
	}
}

// HandleReplies returns replies addressed to the caller.
func HandleReplies(deps *AppDeps) http.HandlerFunc {
	return feedHandler(deps, func(r *http.Request, limit int) ([]board.Message, error) {
		sess, err := deps.session(r)
		if err != nil {
			return nil, err
		}
		return deps.Service.Replies(r.Context(), sess, limit)
	})
}

// HandleSubscribed returns recent posts of the users the caller follows.
func HandleSubscribed(deps *AppDeps) http.HandlerFunc {
	return feedHandler(deps, func(r *http.Request, limit int) ([]board.Message, error) {
		sess, err := deps.session(r)
		if err != nil {
			return nil, err
		}
		return deps.Service.Subscribed(r.Context(), sess, limit)
	})
}

// HandleUserMessages returns recent posts by {username}.
func HandleUserMessages(deps *AppDeps) http.HandlerFunc {
	return feedHandler(deps, func(r *http.Request, limit int) ([]board.Message, error) {
		sess, err := deps.session(r)
		if err != nil {
			return nil, err
		}
		return deps.Service.UserMessages(r.Context(), sess, chi.URLParam(r, "username"), limit)
	})
}

// HandleThread returns every message sharing the id {id}.
func HandleThread(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		msgs, err := deps.Service.Thread(r.Context(), sess, chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, newFeedResponse(msgs))
	}
}

// HandleTags lists every tag with its use count.
func HandleTags(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := deps.Service.Tags(r.Context())
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if tags == nil {
			tags = []board.TagCount{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"tags": tags,
			"text": board.FormatTags(tags),
		})
	}
}

// HandleTagMessages returns every public post carrying {tag}.
func HandleTagMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := deps.Service.TagMessages(r.Context(), chi.URLParam(r, "tag"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, newFeedResponse(msgs))
	}
}
