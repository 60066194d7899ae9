package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"arisan/internal/domain/ledger"
)

// BinClient talks to a JSONBin-style document store over HTTPS. One bin
// holds the whole group document.
type BinClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu    sync.Mutex
	binID string // may be replaced when Push has to create the bin
}

// Compile-time check.
var _ Client = (*BinClient)(nil)

// NewBinClient creates a client for the given bin.
// PRE: baseURL and apiKey are non-empty; binID may be empty (first Push creates it)
// POST: Returns a ready client using httpClient, or http.DefaultClient when nil
func NewBinClient(baseURL, binID, apiKey string, httpClient *http.Client) *BinClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BinClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
		binID:   binID,
	}
}

// BinID returns the bin currently in use.
func (c *BinClient) BinID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.binID
}

// Pull fetches the latest remote document.
// PRE: none
// POST: Returns the remote data; a missing or empty bin yields defaults
func (c *BinClient) Pull(ctx context.Context) (ledger.Data, error) {
	binID := c.BinID()
	if c.apiKey == "" || binID == "" {
		return ledger.DefaultData(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/b/%s/latest", c.baseURL, binID), nil)
	if err != nil {
		return ledger.Data{}, err
	}
	req.Header.Set("X-Master-Key", c.apiKey)
	req.Header.Set("X-Bin-Meta", "false")

	resp, err := c.client.Do(req)
	if err != nil {
		return ledger.Data{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ledger.DefaultData(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return ledger.Data{}, fmt.Errorf("%w: pull status %d", ErrRemote, resp.StatusCode)
	}

	d := ledger.DefaultData()
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return ledger.Data{}, fmt.Errorf("%w: decode: %v", ErrRemote, err)
	}
	return d, nil
}

// Push uploads the full document, creating the bin when it is missing.
// PRE: d is a complete sync payload
// POST: Remote document replaced; on 404 a new bin is created and its id
// adopted for subsequent calls
func (c *BinClient) Push(ctx context.Context, d ledger.Data) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(d)
	if err != nil {
		return err
	}

	binID := c.BinID()
	if binID == "" {
		return c.create(ctx, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/b/%s", c.baseURL, binID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return c.create(ctx, body)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: push status %d: %s", ErrRemote, resp.StatusCode, detail)
	}
	return nil
}

// create makes a new bin holding body and adopts its id.
func (c *BinClient) create(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/b", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.apiKey)
	req.Header.Set("X-Bin-Name", "arisan-data")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: create status %d: %s", ErrRemote, resp.StatusCode, detail)
	}

	var created struct {
		Metadata struct {
			ID string `json:"id"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("%w: decode create response: %v", ErrRemote, err)
	}
	if created.Metadata.ID != "" {
		c.mu.Lock()
		c.binID = created.Metadata.ID
		c.mu.Unlock()
		// The operator should pin this id in configuration; it is only
		// held in memory here.
		slog.Info("remote_bin_created", "bin_id", created.Metadata.ID)
	}
	return nil
}
