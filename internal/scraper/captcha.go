package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/JustJay7/case-lookup/internal/config"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// ErrCaptchaNotFound is returned for an unknown CAPTCHA ID.
var ErrCaptchaNotFound = errors.New("captcha not found")

var captchaIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const defaultTwoCaptchaURL = "http://2captcha.com"

type twoCaptchaResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// CaptchaSolver solves image CAPTCHAs, first through 2Captcha when an API
// key is configured, then by handing the image to a person: it is saved in
// the CAPTCHA directory and the solution is awaited as a text file next to
// it, written through the API.
type CaptchaSolver struct {
	dir           string
	twoCaptchaKey string
	twoCaptchaURL string
	client        *http.Client
	pollInterval  time.Duration
	manualTimeout time.Duration
	logger        *logger.Logger
}

func NewCaptchaSolver(cfg *config.Config, logger *logger.Logger) *CaptchaSolver {
	return &CaptchaSolver{
		dir:           cfg.CaptchaDir,
		twoCaptchaKey: cfg.TwoCaptchaKey,
		twoCaptchaURL: defaultTwoCaptchaURL,
		client:        &http.Client{Timeout: 30 * time.Second},
		pollInterval:  3 * time.Second,
		manualTimeout: 60 * time.Second,
		logger:        logger,
	}
}

// Solve returns the text of the CAPTCHA in image.
func (c *CaptchaSolver) Solve(ctx context.Context, image []byte) (string, error) {
	if c.twoCaptchaKey != "" {
		text, err := c.solveWith2Captcha(ctx, image)
		if err == nil && text != "" {
			c.logger.Info("CAPTCHA solved with 2Captcha")
			return text, nil
		}
		c.logger.Warn("2Captcha failed", "error", err)
	}

	id := uuid.NewString()
	if err := c.Save(id, image); err != nil {
		return "", fmt.Errorf("failed to save captcha for manual solving: %w", err)
	}
	c.logger.Info("CAPTCHA saved for manual solving", "id", id)

	text, err := c.WaitForSolution(ctx, id)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *CaptchaSolver) solveWith2Captcha(ctx context.Context, image []byte) (string, error) {
	form := url.Values{
		"key":    {c.twoCaptchaKey},
		"method": {"base64"},
		"body":   {base64.StdEncoding.EncodeToString(image)},
		"json":   {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.twoCaptchaURL+"/in.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	submitted, err := c.do2Captcha(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit to 2captcha: %w", err)
	}
	if submitted.Status != 1 {
		return "", fmt.Errorf("2captcha submission failed: %s", submitted.Request)
	}

	q := url.Values{
		"key":    {c.twoCaptchaKey},
		"action": {"get"},
		"id":     {submitted.Request},
		"json":   {"1"},
	}
	resultURL := c.twoCaptchaURL + "/res.php?" + q.Encode()

	for i := 0; i < 30; i++ {
		if err := sleep(ctx, c.pollInterval); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
		if err != nil {
			return "", err
		}
		result, err := c.do2Captcha(req)
		if err != nil {
			continue
		}
		if result.Status == 1 {
			return result.Request, nil
		}
		if result.Request != "CAPCHA_NOT_READY" {
			return "", fmt.Errorf("2captcha error: %s", result.Request)
		}
	}
	return "", fmt.Errorf("2captcha timeout")
}

func (c *CaptchaSolver) do2Captcha(req *http.Request) (*twoCaptchaResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out twoCaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode 2captcha response: %w", err)
	}
	return &out, nil
}

func (c *CaptchaSolver) path(id, ext string) (string, error) {
	if !captchaIDPattern.MatchString(id) {
		return "", ErrCaptchaNotFound
	}
	return filepath.Join(c.dir, id+ext), nil
}

// Save writes the CAPTCHA image for manual solving.
func (c *CaptchaSolver) Save(id string, image []byte) error {
	p, err := c.path(id, ".png")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(p, image, 0644)
}

// Image returns a saved CAPTCHA image.
func (c *CaptchaSolver) Image(id string) ([]byte, error) {
	p, err := c.path(id, ".png")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCaptchaNotFound
	}
	return data, err
}

// Pending lists the IDs of CAPTCHAs waiting for a solution.
func (c *CaptchaSolver) Pending() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.png"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".png"))
	}
	return ids, nil
}

// SubmitSolution records a person's answer for a saved CAPTCHA.
func (c *CaptchaSolver) SubmitSolution(id, solution string) error {
	img, err := c.path(id, ".png")
	if err != nil {
		return err
	}
	if _, err := os.Stat(img); err != nil {
		return ErrCaptchaNotFound
	}
	p, _ := c.path(id, ".txt")
	return os.WriteFile(p, []byte(strings.TrimSpace(solution)), 0644)
}

// WaitForSolution polls for the solution file of id until it appears, the
// manual timeout passes or ctx ends. Both files are removed once read.
func (c *CaptchaSolver) WaitForSolution(ctx context.Context, id string) (string, error) {
	solution, err := c.path(id, ".txt")
	if err != nil {
		return "", err
	}
	img, _ := c.path(id, ".png")

	ctx, cancel := context.WithTimeout(ctx, c.manualTimeout)
	defer cancel()

	for {
		if data, err := os.ReadFile(solution); err == nil {
			if text := strings.TrimSpace(string(data)); text != "" {
				_ = os.Remove(solution)
				_ = os.Remove(img)
				return text, nil
			}
		}
		if err := sleep(ctx, c.pollInterval); err != nil {
			return "", fmt.Errorf("timeout waiting for manual solution: %w", err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// handleCaptcha fills the CAPTCHA of the search form, if there is one. The
// court site sometimes prints the code as text; otherwise the image is
// solved.
func (s *Scraper) handleCaptcha(ctx context.Context, page *rod.Page) error {
	if ok, code, _ := page.Has("#captcha-code"); ok {
		text, _ := code.Text()
		text = strings.TrimSpace(text)
		if text != "" {
			input, err := page.Element("#captchaInput")
			if err != nil {
				return fmt.Errorf("captcha input not found: %w", err)
			}
			s.logger.Debug("Entering displayed CAPTCHA code")
			return input.Input(text)
		}
	}

	ok, img, _ := page.Has("img#captcha_image, img[id*='captcha'], img[src*='captcha']")
	if !ok {
		s.logger.Debug("No CAPTCHA detected")
		return nil
	}

	s.logger.Info("CAPTCHA detected, attempting to solve")
	data, err := s.captchaImage(ctx, page, img)
	if err != nil {
		return fmt.Errorf("failed to get CAPTCHA image: %w", err)
	}

	text, err := s.captcha.Solve(ctx, data)
	if err != nil {
		return err
	}

	input, err := page.Element("input[name='captcha'], input[id*='captcha'], input[type='text'][placeholder*='captcha']")
	if err != nil {
		return fmt.Errorf("captcha input field not found: %w", err)
	}
	return input.Input(text)
}

func (s *Scraper) captchaImage(ctx context.Context, page *rod.Page, img *rod.Element) ([]byte, error) {
	src, err := img.Attribute("src")
	if err == nil && src != nil && *src != "" {
		if strings.HasPrefix(*src, "data:image") {
			if _, payload, ok := strings.Cut(*src, ","); ok {
				if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
					return data, nil
				}
			}
		}

		base := ""
		if info, err := page.Info(); err == nil {
			base = info.URL
		}
		if strings.HasPrefix(*src, "http") || strings.HasPrefix(*src, "/") {
			cookies, _ := page.Cookies(nil)
			if data, err := s.fetchWithCookies(ctx, resolveURL(base, *src), cookies); err == nil {
				return data, nil
			}
		}
	}

	return img.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (s *Scraper) fetchWithCookies(ctx context.Context, imgURL string, cookies []*proto.NetworkCookie) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
