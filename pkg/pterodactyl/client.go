// Package pterodactyl is the client for the hosting panel's application API.
// It provisions a panel user plus a server instance for a paid plan, and
// deletes servers on request.
package pterodactyl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/panelmurah/ptero-store/pkg/catalog"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"go.uber.org/zap"
)

// ErrServerNotFound is returned when deleting a server the panel does not know.
var ErrServerNotFound = errors.New("server not found")

// ProvisionError is a failed provisioning step. Step names the API call so an
// operator can tell how far provisioning got; a user created before a failed
// server creation is left as-is.
type ProvisionError struct {
	Step   string
	Detail string
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %s", e.Step, e.Detail)
}

// Specs is the human-formatted resource allocation of a provisioned server.
type Specs struct {
	RAM  string
	CPU  string
	Disk string
}

// Account is the result of a successful provisioning run.
type Account struct {
	UserID     int
	ServerID   int
	ServerUUID string
	Identifier string
	Username   string
	Password   string
	Email      string
	Plan       string
	Specs      Specs
	LoginURL   string
}

type Client interface {
	// CreateAccount provisions a panel user and a server bound to it, in that
	// order. No rollback is attempted on partial failure.
	CreateAccount(ctx context.Context, plan catalog.Plan, username, password, email string) (Account, error)
	// DeleteServer removes a server. Succeeds only on an explicit 204.
	DeleteServer(ctx context.Context, serverID int) error
}

type Config struct {
	BaseURL    string
	APIKey     string
	NestID     int
	EggID      int
	LocationID int
}

type ClientImpl struct {
	logger *zap.Logger
	cfg    Config
	http   *http.Client
}

func NewClient(logger *zap.Logger, cfg Config, opts ...utils.ClientOption) Client {
	return &ClientImpl{
		logger: logger,
		cfg:    cfg,
		http:   utils.NewHTTPClient(opts...),
	}
}

// apiError is one entry of the `errors` array the panel returns. It can show
// up in a 200 response, so it must be checked explicitly on every call.
type apiError struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type userResponse struct {
	Errors     []apiError `json:"errors"`
	Attributes struct {
		ID int `json:"id"`
	} `json:"attributes"`
}

type eggResponse struct {
	Errors     []apiError `json:"errors"`
	Attributes struct {
		Startup string `json:"startup"`
	} `json:"attributes"`
}

type serverResponse struct {
	Errors     []apiError `json:"errors"`
	Attributes struct {
		ID         int    `json:"id"`
		UUID       string `json:"uuid"`
		Identifier string `json:"identifier"`
	} `json:"attributes"`
}

func (c *ClientImpl) CreateAccount(ctx context.Context, plan catalog.Plan, username, password, email string) (Account, error) {
	panelUsername := strings.ToLower(username)
	panelEmail := email
	if utils.IsEmpty(panelEmail) {
		panelEmail = panelUsername + "@gmail.com"
	}
	panelPassword := password
	if utils.IsEmpty(panelPassword) {
		panelPassword = panelUsername + "01"
	}
	panelName := utils.TitleCase(username) + " Server"

	var user userResponse
	err := c.do(ctx, http.MethodPost, "/api/application/users", map[string]any{
		"email":      panelEmail,
		"username":   panelUsername,
		"first_name": panelName,
		"last_name":  "Server",
		"language":   "en",
		"password":   panelPassword,
	}, &user, &user.Errors)
	if err != nil {
		return Account{}, err
	}

	eggPath := fmt.Sprintf("/api/application/nests/%d/eggs/%d", c.cfg.NestID, c.cfg.EggID)
	var egg eggResponse
	if err := c.do(ctx, http.MethodGet, eggPath, nil, &egg, &egg.Errors); err != nil {
		return Account{}, err
	}

	var server serverResponse
	err = c.do(ctx, http.MethodPost, "/api/application/servers", map[string]any{
		"name":         panelName,
		"description":  "",
		"user":         user.Attributes.ID,
		"egg":          c.cfg.EggID,
		"docker_image": "ghcr.io/parkervcp/yolks:nodejs_20",
		"startup":      egg.Attributes.Startup,
		"environment": map[string]any{
			"INST":        "npm",
			"USER_UPLOAD": "0",
			"AUTO_UPDATE": "0",
			"CMD_RUN":     "npm start",
		},
		"limits": map[string]any{
			"memory": plan.MemoryMB,
			"swap":   0,
			"disk":   plan.DiskMB,
			"io":     500,
			"cpu":    plan.CPUPercent,
		},
		"feature_limits": map[string]any{
			"databases":   5,
			"backups":     5,
			"allocations": 5,
		},
		"deploy": map[string]any{
			"locations":    []int{c.cfg.LocationID},
			"dedicated_ip": false,
			"port_range":   []string{},
		},
	}, &server, &server.Errors)
	if err != nil {
		return Account{}, err
	}

	return Account{
		UserID:     user.Attributes.ID,
		ServerID:   server.Attributes.ID,
		ServerUUID: server.Attributes.UUID,
		Identifier: server.Attributes.Identifier,
		Username:   panelUsername,
		Password:   panelPassword,
		Email:      panelEmail,
		Plan:       plan.ID,
		Specs: Specs{
			RAM:  utils.FormatMB(plan.MemoryMB),
			CPU:  utils.FormatCPU(plan.CPUPercent),
			Disk: utils.FormatMB(plan.DiskMB),
		},
		LoginURL: c.cfg.BaseURL,
	}, nil
}

func (c *ClientImpl) DeleteServer(ctx context.Context, serverID int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/application/servers/%d", c.cfg.BaseURL, serverID), nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProvisionError{Step: "delete server", Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrServerNotFound
	default:
		return &ProvisionError{Step: "delete server", Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}
}

// do performs one API call and decodes into out. The errors slice must point
// into out so a logical failure inside a 2xx body is surfaced.
func (c *ClientImpl) do(ctx context.Context, method, path string, body any, out any, apiErrs *[]apiError) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &ProvisionError{Step: method + " " + path, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProvisionError{Step: method + " " + path, Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProvisionError{Step: method + " " + path, Detail: err.Error()}
	}
	if len(*apiErrs) > 0 {
		first := (*apiErrs)[0]
		c.logger.Error("panel API returned logical error",
			zap.String("path", path), zap.String("code", first.Code), zap.String("detail", first.Detail))
		return &ProvisionError{Step: method + " " + path, Detail: first.Detail}
	}
	return nil
}

func (c *ClientImpl) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
}
