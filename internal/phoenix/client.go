package phoenix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Phoenix server's dataset APIs.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{}}
}

// DatasetUpload is the create-dataset payload: three index-aligned sequences
// of equal length.
type DatasetUpload struct {
	Action      string              `json:"action"`
	Name        string              `json:"name"`
	Description string              `json:"dataset_description,omitempty"`
	Inputs      []map[string]string `json:"inputs"`
	Outputs     []map[string]string `json:"outputs"`
	Metadata    []map[string]string `json:"metadata"`
}

// CreateDataset uploads the dataset synchronously. Phoenix 8.0 returns an
// empty body on success for this endpoint, which surfaces here as a decode
// error; callers should verify before treating that as a failure.
func (c *Client) CreateDataset(ctx context.Context, upload DatasetUpload) error {
	if upload.Action == "" {
		upload.Action = "create"
	}
	body, err := json.Marshal(upload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/datasets/upload?sync=true", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("phoenix status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var created struct {
		Data struct {
			DatasetID string `json:"dataset_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("decode create response: %w", err)
	}
	if created.Data.DatasetID == "" {
		return fmt.Errorf("create response missing dataset_id")
	}
	return nil
}

const listDatasetsQuery = `{ datasets { edges { node { name exampleCount } } } }`

// VerifyDataset checks via GraphQL whether a dataset with the given name
// exists, bypassing the REST path entirely. The wait is bounded so a hung
// server cannot stall the fallback. Returns the server-side example count
// when the dataset is found.
func (c *Client) VerifyDataset(ctx context.Context, name string, timeout time.Duration) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"query": listDatasetsQuery})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, false, fmt.Errorf("graphql status %d", resp.StatusCode)
	}

	var decoded struct {
		Data struct {
			Datasets struct {
				Edges []struct {
					Node struct {
						Name         string `json:"name"`
						ExampleCount int    `json:"exampleCount"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"datasets"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, false, err
	}
	for _, edge := range decoded.Data.Datasets.Edges {
		if edge.Node.Name == name {
			return edge.Node.ExampleCount, true, nil
		}
	}
	return 0, false, nil
}
