//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/jsamuelsen/message-notifier/internal/bootstrap"
	"github.com/jsamuelsen/message-notifier/internal/domain"
)

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	svc    *service
	outbox *outbox
	client *http.Client

	response     *http.Response
	responseBody []byte
}

// reset clears response state between scenarios.
func (tc *testContext) reset() {
	if tc.response != nil && tc.response.Body != nil {
		tc.response.Body.Close()
	}

	tc.response = nil
	tc.responseBody = nil
	tc.outbox.reset()
	tc.svc.setSite("example.com", "Example")
}

// initializeScenario registers step definitions for each scenario.
func (tc *testContext) initializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^the current site is "([^"]*)"$`, tc.theCurrentSiteIs)
	ctx.Step(`^no current site is configured$`, tc.noCurrentSiteIsConfigured)
	ctx.Step(`^the mail transport is failing$`, tc.theMailTransportIsFailing)

	ctx.Step(`^I request GET "([^"]*)"$`, tc.iRequestGET)
	ctx.Step(`^I POST to "([^"]*)" with:$`, tc.iPOSTWith)

	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, tc.theJSONFieldShouldBe)
	ctx.Step(`^the JSON field "([^"]*)" should read:$`, tc.theJSONFieldShouldRead)

	ctx.Step(`^(\d+) emails? should have been sent$`, tc.emailsShouldHaveBeenSent)
	ctx.Step(`^the last email should be sent to "([^"]*)"$`, tc.theLastEmailShouldBeSentTo)
	ctx.Step(`^the last email subject should be "([^"]*)"$`, tc.theLastEmailSubjectShouldBe)
	ctx.Step(`^the last email body should contain "([^"]*)"$`, tc.theLastEmailBodyShouldContain)
}

func (tc *testContext) theServiceIsRunning() error {
	if err := tc.iRequestGET("/-/live"); err != nil {
		return fmt.Errorf("service is not running at %s: %w", tc.svc.baseURL, err)
	}

	return tc.theResponseStatusShouldBe(http.StatusOK)
}

func (tc *testContext) theCurrentSiteIs(domainName string) error {
	tc.svc.setSite(domainName, domainName)
	return nil
}

func (tc *testContext) noCurrentSiteIsConfigured() error {
	tc.svc.clearSite()
	return nil
}

func (tc *testContext) theMailTransportIsFailing() error {
	tc.outbox.setFailing(true)
	return nil
}

func (tc *testContext) iRequestGET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *testContext) iPOSTWith(path string, body *godog.DocString) error {
	return tc.do(http.MethodPost, path, strings.NewReader(body.Content))
}

func (tc *testContext) do(method, path string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.svc.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	tc.response = resp

	tc.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}

	if tc.response.StatusCode != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.response.StatusCode, string(tc.responseBody))
	}

	return nil
}

func (tc *testContext) theResponseShouldContain(text string) error {
	if !bytes.Contains(tc.responseBody, []byte(text)) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.responseBody)
	}

	return nil
}

// jsonField reads a dotted path such as "error.code" from the response.
func (tc *testContext) jsonField(path string) (string, error) {
	var doc any
	if err := json.Unmarshal(tc.responseBody, &doc); err != nil {
		return "", fmt.Errorf("response is not JSON: %w\nBody: %s", err, tc.responseBody)
	}

	for _, key := range strings.Split(path, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return "", fmt.Errorf("field %q: %v is not an object", key, doc)
		}

		doc, ok = obj[key]
		if !ok {
			return "", fmt.Errorf("field %q missing in %s", path, tc.responseBody)
		}
	}

	return fmt.Sprint(doc), nil
}

func (tc *testContext) theJSONFieldShouldBe(path, want string) error {
	got, err := tc.jsonField(path)
	if err != nil {
		return err
	}

	if got != want {
		return fmt.Errorf("field %q: expected %q, got %q", path, want, got)
	}

	return nil
}

func (tc *testContext) theJSONFieldShouldRead(path string, want *godog.DocString) error {
	return tc.theJSONFieldShouldBe(path, want.Content)
}

func (tc *testContext) emailsShouldHaveBeenSent(n int) error {
	if got := len(tc.outbox.sent()); got != n {
		return fmt.Errorf("expected %d emails, got %d", n, got)
	}

	return nil
}

func (tc *testContext) lastEmail() (*domain.NotificationEmail, error) {
	sent := tc.outbox.sent()
	if len(sent) == 0 {
		return nil, fmt.Errorf("no email was sent")
	}

	return sent[len(sent)-1], nil
}

func (tc *testContext) theLastEmailShouldBeSentTo(addr string) error {
	email, err := tc.lastEmail()
	if err != nil {
		return err
	}

	if len(email.To) != 1 || email.To[0] != addr {
		return fmt.Errorf("expected recipient [%s], got %v", addr, email.To)
	}

	return nil
}

func (tc *testContext) theLastEmailSubjectShouldBe(subject string) error {
	email, err := tc.lastEmail()
	if err != nil {
		return err
	}

	if email.Subject != subject {
		return fmt.Errorf("expected subject %q, got %q", subject, email.Subject)
	}

	return nil
}

func (tc *testContext) theLastEmailBodyShouldContain(text string) error {
	email, err := tc.lastEmail()
	if err != nil {
		return err
	}

	// Feature files write line breaks as \n.
	text = strings.ReplaceAll(text, `\n`, "\n")
	if !strings.Contains(email.Body, text) {
		return fmt.Errorf("email body does not contain %q.\nBody: %s", text, email.Body)
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite against an in-process service.
func TestFeatures(t *testing.T) {
	box := &outbox{}
	tc := &testContext{
		svc:    startService(t, testConfig(t), bootstrap.WithMailSender(box)),
		outbox: box,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	suite := godog.TestSuite{
		ScenarioInitializer: tc.initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
