package email

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
	resend "github.com/resend/resend-go/v2"
)

// EmailClient is an interface for sending emails
type EmailClient interface {
	SendAsync(toEmail, subject, htmlBody string)
	SendWelcomeEmail(user *models.User)
	SendApplicationReceivedEmail(creator, applicant *models.User, team *models.Team, app *models.Application)
	SendApplicationDecisionEmail(applicant *models.User, team *models.Team, app *models.Application)
}

// ResendEmailClient implements EmailClient using the Resend service
type ResendEmailClient struct {
	client        *resend.Client
	defaultSender string
	appURL        string
	templateDir   string
	logger        echo.Logger
	wg            sync.WaitGroup
}

// NewResendEmailClient creates a new ResendEmailClient. appURL is used to
// build links back to the web app.
func NewResendEmailClient(client *resend.Client, defaultSender, appURL string, logger echo.Logger) *ResendEmailClient {
	return &ResendEmailClient{
		client:        client,
		defaultSender: defaultSender,
		appURL:        strings.TrimRight(appURL, "/"),
		templateDir:   "web/emails",
		logger:        logger,
	}
}

// SetTemplateDir changes where the HTML templates are read from.
func (c *ResendEmailClient) SetTemplateDir(dir string) {
	c.templateDir = dir
}

// SendAsync sends an email asynchronously
func (c *ResendEmailClient) SendAsync(toEmail, subject, htmlBody string) {
	if c == nil || c.client == nil {
		return
	}

	if c.defaultSender == "" {
		c.logger.Errorf("Resend default sender not configured, skipping email.")
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		params := &resend.SendEmailRequest{
			From:    c.defaultSender,
			To:      []string{toEmail},
			Subject: subject,
			Html:    htmlBody,
		}

		_, err := c.client.Emails.Send(params)
		if err != nil {
			c.logger.Errorf("Failed to send email to %s (Subject: %s): %v", toEmail, subject, err)
		} else {
			c.logger.Infof("Email sent successfully to %s (Subject: %s)", toEmail, subject)
		}
	}()
}

// Wait blocks until every email queued by SendAsync has been handed to Resend.
func (c *ResendEmailClient) Wait() {
	c.wg.Wait()
}

// render reads a template and replaces each {key} with its HTML-escaped value.
func (c *ResendEmailClient) render(name string, values map[string]string) (string, error) {
	templateBytes, err := os.ReadFile(filepath.Join(c.templateDir, name))
	if err != nil {
		return "", fmt.Errorf("read email template %s: %w", name, err)
	}
	body := string(templateBytes)
	for key, value := range values {
		body = strings.ReplaceAll(body, "{"+key+"}", html.EscapeString(value))
	}
	return body, nil
}

// SendWelcomeEmail sends a welcome email to a new user
func (c *ResendEmailClient) SendWelcomeEmail(user *models.User) {
	if user == nil {
		c.logger.Error("Cannot send welcome email to nil user")
		return
	}

	htmlBody, err := c.render("welcome.html", map[string]string{
		"name":       user.GetDisplayName(),
		"browse_url": c.appURL + "/teams",
	})
	if err != nil {
		c.logger.Errorf("Failed to render welcome email: %v", err)
		return
	}

	c.SendAsync(user.Email, "Welcome to TeamUp "+user.GetDisplayName(), htmlBody)
}

// SendApplicationReceivedEmail tells a team's creator that someone applied.
func (c *ResendEmailClient) SendApplicationReceivedEmail(creator, applicant *models.User, team *models.Team, app *models.Application) {
	if creator == nil || applicant == nil || team == nil || app == nil {
		c.logger.Error("Cannot send application email with missing data")
		return
	}

	htmlBody, err := c.render("application-received.html", map[string]string{
		"creator_name":   creator.GetDisplayName(),
		"applicant_name": applicant.GetDisplayName(),
		"team_name":      team.Name,
		"message":        app.Message,
		"review_url":     c.appURL + "/applications/received",
	})
	if err != nil {
		c.logger.Errorf("Failed to render application email: %v", err)
		return
	}

	subject := fmt.Sprintf("%s wants to join %s", applicant.GetDisplayName(), team.Name)
	c.SendAsync(creator.Email, subject, htmlBody)
}

// SendApplicationDecisionEmail tells an applicant whether they were accepted.
func (c *ResendEmailClient) SendApplicationDecisionEmail(applicant *models.User, team *models.Team, app *models.Application) {
	if applicant == nil || team == nil || app == nil {
		c.logger.Error("Cannot send decision email with missing data")
		return
	}

	htmlBody, err := c.render("application-decision.html", map[string]string{
		"applicant_name": applicant.GetDisplayName(),
		"team_name":      team.Name,
		"status":         string(app.Status),
		"team_url":       c.appURL + "/teams/" + team.ID,
	})
	if err != nil {
		c.logger.Errorf("Failed to render decision email: %v", err)
		return
	}

	subject := fmt.Sprintf("Your application to %s was %s", team.Name, app.Status)
	c.SendAsync(applicant.Email, subject, htmlBody)
}
