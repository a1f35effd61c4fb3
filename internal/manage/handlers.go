package manage

import (
	"net/url"
	"strings"

	"autotelex-sync/internal/feed"
	"autotelex-sync/internal/listings"
	"autotelex-sync/internal/middleware"
	"autotelex-sync/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the manage endpoint with the sync pipeline.
type Handlers struct {
	Service *listings.Service
}

// ManageStock POST /autotelex-automotive/v1/manage — receives one
// add/change/delete notification from the feed and applies it. On success the
// body is the literal "1" the feed expects; rejections are 400 with a reason.
func (h *Handlers) ManageStock(c *fiber.Ctx) error {
	fields, err := feed.ParseFields(h.requestParams(c))
	if err != nil {
		return response.Failed(c, err.Error(), fiber.StatusBadRequest)
	}

	outcome, err := h.Service.Apply(c.Context(), fields)
	if err != nil {
		return err
	}
	if !outcome.OK {
		log.Info().
			Str("trace_id", middleware.GetTraceID(c)).
			Str("action", fields.Action.String()).
			Str("external_id", fields.ExternalID).
			Str("reason", outcome.Detail).
			Msg("Notification rejected")
		return response.Failed(c, outcome.Detail, fiber.StatusBadRequest)
	}
	return response.ManageSuccess(c)
}

// requestParams extracts the flat parameter map: an XML body goes through the
// feed normalizer, everything else is read as form/query parameters. A body
// that claims to be XML but does not parse falls through to form handling,
// which rejects it for the missing parameters.
func (h *Handlers) requestParams(c *fiber.Ctx) map[string]string {
	body := c.Body()
	if isXMLContentType(c.Get(fiber.HeaderContentType)) && feed.LooksLikeXML(body) {
		params, err := feed.Normalize(body)
		if err == nil {
			return params
		}
		log.Warn().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("Malformed XML body")
	}

	params := make(map[string]string)
	for k, v := range c.Queries() {
		params[k] = v
	}
	values, _ := url.ParseQuery(string(body))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

func isXMLContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}
