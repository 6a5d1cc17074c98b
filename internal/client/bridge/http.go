package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
	"github.com/dmitrijs2005/studybridge/internal/common"
	"github.com/sethvargo/go-retry"
)

// HTTPClient talks to the study service over REST. The underlying
// http.Client is replaced wholesale whenever the session token changes, so
// requests issued after SetSessionToken returns always carry the new token.
type HTTPClient struct {
	baseURL   string
	studyID   string
	userAgent string

	mu         sync.RWMutex
	httpClient *http.Client
	token      string
}

type headerTransport struct {
	userAgent string
	token     string
	base      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	r.Header.Set(common.SessionTokenHeaderName, t.token)
	return t.base.RoundTrip(r)
}

func NewHTTPClient(baseURL, studyID, userAgent string) *HTTPClient {
	c := &HTTPClient{baseURL: baseURL, studyID: studyID, userAgent: userAgent}
	c.SetSessionToken("")
	return c
}

func (c *HTTPClient) SetSessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.httpClient = &http.Client{
		Transport: &headerTransport{
			userAgent: c.userAgent,
			token:     token,
			base:      http.DefaultTransport,
		},
	}
}

func (c *HTTPClient) client() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpClient
}

// wire bodies of the auth endpoints

type signUpBody struct {
	Study    string `json:"study"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInBody struct {
	Study    string `json:"study"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type emailBody struct {
	Study string `json:"study"`
	Email string `json:"email"`
}

type withdrawalBody struct {
	Reason string `json:"reason"`
}

type sharingOptionBody struct {
	Scope models.SharingScope `json:"scope"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationStatusResponse struct {
	Status models.ValidationStatus `json:"status"`
}

// statusStudyFull is the non-standard status the service answers a sign-up
// with when enrollment is closed.
const statusStudyFull = 473

func (c *HTTPClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrTransport, err)
	}
	return resp, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrTransport, err)
	}
	return resp, nil
}

func decodeMessage(resp *http.Response) string {
	var m messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return ""
	}
	return m.Message
}

func (c *HTTPClient) SignUp(ctx context.Context, email, username, password string) (string, error) {
	resp, err := c.post(ctx, "auth/signUp", signUpBody{
		Study:    c.studyID,
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg := decodeMessage(resp)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return msg, nil
	case resp.StatusCode == statusStudyFull:
		return "", fmt.Errorf("%w: %s", common.ErrStudyFull, msg)
	default:
		return "", fmt.Errorf("%w: sign up returned %d: %s", common.ErrAuth, resp.StatusCode, msg)
	}
}

func (c *HTTPClient) SignIn(ctx context.Context, username, password string) (*models.Session, error) {
	resp, err := c.post(ctx, "auth/signIn", signInBody{
		Study:    c.studyID,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var s models.Session
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return nil, fmt.Errorf("decode sign in response: %w", err)
		}
		return &s, nil

	case http.StatusPreconditionFailed:
		// valid credentials, consent outstanding: the error payload still
		// carries a full session body
		var s models.Session
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return nil, fmt.Errorf("decode sign in error payload: %w", err)
		}
		s.Consented = false
		return &s, common.ErrNotConsented

	default:
		return nil, fmt.Errorf("%w: sign in returned %d: %s",
			common.ErrAuth, resp.StatusCode, decodeMessage(resp))
	}
}

func (c *HTTPClient) SignOut(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, "auth/signOut", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg := decodeMessage(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return msg, fmt.Errorf("%w: sign out returned %d", common.ErrAuth, resp.StatusCode)
	}
	return msg, nil
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.post(ctx, "auth/requestResetPassword", emailBody{Study: c.studyID, Email: email})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: password reset returned %d", common.ErrAuth, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) ResendEmailVerification(ctx context.Context, email string) error {
	resp, err := c.post(ctx, "auth/resendEmailVerification", emailBody{Study: c.studyID, Email: email})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: resend verification returned %d", common.ErrAuth, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) ConsentSignature(ctx context.Context, sig *models.ConsentSignature) error {
	resp, err := c.post(ctx, "subpopulations/"+c.studyID+"/consents/signature", sig)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusConflict:
		return common.ErrAlreadyConsented
	default:
		return fmt.Errorf("%w: consent upload returned %d: %s",
			common.ErrConsentSync, resp.StatusCode, decodeMessage(resp))
	}
}

func (c *HTTPClient) WithdrawConsent(ctx context.Context, reason string) (string, error) {
	resp, err := c.post(ctx, "subpopulations/"+c.studyID+"/consents/signature/withdraw", withdrawalBody{Reason: reason})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg := decodeMessage(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return msg, fmt.Errorf("%w: withdraw returned %d", common.ErrConsentSync, resp.StatusCode)
	}
	return msg, nil
}

func (c *HTTPClient) SetDataSharing(ctx context.Context, scope models.SharingScope) error {
	resp, err := c.post(ctx, "users/self/dataSharing", sharingOptionBody{Scope: scope})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: data sharing returned %d", common.ErrTransport, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) SubmitSurveyResponse(ctx context.Context, response *models.SurveyResponse) (string, error) {
	resp, err := c.post(ctx, "surveyresponses", response)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: survey submission returned %d", common.ErrTransport, resp.StatusCode)
	}

	var holder models.IdentifierHolder
	if err := json.NewDecoder(resp.Body).Decode(&holder); err != nil {
		return "", fmt.Errorf("decode survey response: %w", err)
	}
	return holder.Identifier, nil
}

func (c *HTTPClient) RequestUploadSession(ctx context.Context, request *models.UploadRequest) (*models.UploadSession, error) {
	resp, err := c.post(ctx, "uploads", request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: begin upload returned %d", common.ErrTransport, resp.StatusCode)
	}

	var session models.UploadSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode upload session: %w", err)
	}
	return &session, nil
}

func (c *HTTPClient) UploadComplete(ctx context.Context, id string) error {
	resp, err := c.post(ctx, "uploads/"+id+"/complete", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: upload complete returned %d", common.ErrTransport, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) UploadStatus(ctx context.Context, id string) (models.ValidationStatus, error) {
	var status models.ValidationStatus

	// the poll is a read; transient failures are retried with backoff
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.get(ctx, "uploadstatuses/"+id)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("%w: upload status returned %d", common.ErrTransport, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: upload status returned %d", common.ErrTransport, resp.StatusCode)
		}

		var v validationStatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return fmt.Errorf("decode upload status: %w", err)
		}
		status = v.Status
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func (c *HTTPClient) PutBlob(ctx context.Context, url string, data []byte, contentType, contentMD5 string) error {
	// the signed URL bypasses the study API; no session header is attached
	// and the request fails without Content-MD5 and Content-Type
	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-MD5", contentMD5)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %s", common.ErrTransport, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			b, _ := io.ReadAll(resp.Body)
			return retry.RetryableError(fmt.Errorf("%w: blob transfer returned %d: %s",
				common.ErrTransport, resp.StatusCode, string(b)))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("%w: blob transfer returned %d: %s",
				common.ErrTransport, resp.StatusCode, string(b))
		}
		return nil
	})
}
