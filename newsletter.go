package folio

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Flash and API messages for newsletter sign-ups.
const (
	msgSubscribed        = "Thanks for subscribing!"
	msgAlreadySubscribed = "You're already subscribed."
	msgInvalidEmail      = "Please enter a valid email address."
	msgTooMany           = "Too many attempts. Please try again in a minute."
	msgFailed            = "Something went wrong. Please try again later."
)

type newsletterRequest struct {
	Email string `json:"email" form:"email"`
}

type newsletterResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// subscribe records a sign-up and maps the outcome to a status code, result
// label and user-facing message. Store failures are logged, not returned.
func (a *App) subscribe(c echo.Context, email string) (int, string, string) {
	if a.limiter != nil && !a.limiter.Allow(c.RealIP()) {
		return http.StatusTooManyRequests, "limited", msgTooMany
	}
	_, err := a.Store.Subscribe(email)
	switch {
	case err == nil:
		return http.StatusCreated, "subscribed", msgSubscribed
	case errors.Is(err, ErrAlreadySubscribed):
		return http.StatusConflict, "duplicate", msgAlreadySubscribed
	case errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest, "invalid", msgInvalidEmail
	default:
		a.logger.Errorf("folio: newsletter sign-up: %v", err)
		return http.StatusServiceUnavailable, "error", msgFailed
	}
}

func (a *App) handleNewsletterForm(c echo.Context) error {
	_, result, msg := a.subscribe(c, c.FormValue("email"))
	a.Metrics.Subscriptions.WithLabelValues(result).Inc()
	if err := AddFlash(c, msg); err != nil {
		a.logger.Warnf("folio: flash: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, a.backTo(c))
}

func (a *App) handleNewsletterAPI(c echo.Context) error {
	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newsletterResponse{Status: "invalid", Message: msgInvalidEmail})
	}
	code, result, msg := a.subscribe(c, req.Email)
	a.Metrics.Subscriptions.WithLabelValues(result).Inc()
	return c.JSON(code, newsletterResponse{Status: result, Message: msg})
}

func (a *App) handleUnsubscribe(c echo.Context) error {
	err := a.Store.Unsubscribe(c.Param("token"))
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	page := RenderedArticle{
		Article: Article{Slug: "newsletter/unsubscribe", Meta: Meta{Title: "Unsubscribed"}},
		HTML:    "<p>You have been unsubscribed and will not receive further emails.</p>",
	}
	p := a.page(c, PageMeta{Title: page.Meta.Title})
	return Render(c, a.Views.Page(p, page))
}

// backTo returns the same-site referring path, or "/".
func (a *App) backTo(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != c.Request().Host {
		return "/"
	}
	return ref.Path
}
