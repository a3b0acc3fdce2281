package huggingface

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Files above this size, and any file the server flags, go through LFS.
const lfsThreshold = 10 * 1024 * 1024

// CreateRepo creates a model repository on the hub. An already existing
// repo is not an error.
func (c *Client) CreateRepo(ctx context.Context, repoID string, private bool) error {
	if err := validateRepoID(repoID); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"type":         "model",
		"name":         RepoName(repoID),
		"organization": RepoOwner(repoID),
		"private":      private,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/repos/create", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		// repo already exists
		return nil
	}
	return c.responseError(resp)
}

// UploadBytes commits small in-memory content (model cards, configs) to the
// repository under pathInRepo.
func (c *Client) UploadBytes(ctx context.Context, repoID, pathInRepo string, data []byte, message string) error {
	if err := validateRepoID(repoID); err != nil {
		return err
	}
	if pathInRepo == "" {
		return fmt.Errorf("%w: empty path in repo", ErrUploadFailed)
	}
	if message == "" {
		message = fmt.Sprintf("Upload %s", filepath.Base(pathInRepo))
	}

	entry := commitEntry{
		Key: "file",
		Value: map[string]any{
			"path":     pathInRepo,
			"content":  base64.StdEncoding.EncodeToString(data),
			"encoding": "base64",
		},
	}
	return c.commit(ctx, repoID, message, entry)
}

// UploadFile commits a local file to the repository under pathInRepo. Large
// files stream through the LFS batch API without being held in memory; the
// server's preupload hint decides the mode, falling back to a size
// threshold when the hint is unavailable.
func (c *Client) UploadFile(ctx context.Context, repoID, pathInRepo, localPath, message string) error {
	if err := validateRepoID(repoID); err != nil {
		return err
	}
	if pathInRepo == "" {
		return fmt.Errorf("%w: empty path in repo", ErrUploadFailed)
	}
	if message == "" {
		message = fmt.Sprintf("Upload %s", filepath.Base(pathInRepo))
	}

	fi, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	size := fi.Size()

	sample, err := readSample(localPath)
	if err != nil {
		return err
	}

	useLFS := size >= lfsThreshold
	if mode, err := c.preupload(ctx, repoID, pathInRepo, size, sample); err == nil {
		useLFS = mode == "lfs"
	}

	if !useLFS {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return err
		}
		return c.UploadBytes(ctx, repoID, pathInRepo, data, message)
	}

	oid, err := fileSHA256(localPath)
	if err != nil {
		return err
	}

	open := func() (io.ReadCloser, error) { return os.Open(localPath) }
	if err := c.lfsUpload(ctx, repoID, size, oid, open); err != nil {
		return err
	}

	entry := commitEntry{
		Key: "lfsFile",
		Value: map[string]any{
			"path": pathInRepo,
			"algo": "sha256",
			"oid":  oid,
			"size": size,
		},
	}
	return c.commit(ctx, repoID, message, entry)
}

type commitEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sample := make([]byte, 512)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return sample[:n], nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// preupload asks the server how a file should be uploaded ("regular" vs
// "lfs"). Errors are soft; the caller falls back to a size heuristic.
func (c *Client) preupload(ctx context.Context, repoID, pathInRepo string, size int64, sample []byte) (string, error) {
	body, err := json.Marshal(map[string]any{
		"files": []map[string]any{{
			"path":   pathInRepo,
			"size":   size,
			"sample": base64.StdEncoding.EncodeToString(sample),
		}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/models/%s/preupload/main", c.baseURL, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.responseError(resp); err != nil {
		return "", err
	}

	var decoded struct {
		Files []struct {
			Path       string `json:"path"`
			UploadMode string `json:"uploadMode"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Files) == 0 {
		return "", fmt.Errorf("%w: empty preupload response", ErrInvalidResponse)
	}
	return decoded.Files[0].UploadMode, nil
}

type lfsAction struct {
	Href   string            `json:"href"`
	Header map[string]string `json:"header"`
}

// lfsUpload stores content through the git-lfs batch API: request an upload
// action, PUT the bytes to the returned href, then verify when asked to.
func (c *Client) lfsUpload(ctx context.Context, repoID string, size int64, oid string, open func() (io.ReadCloser, error)) error {
	body, err := json.Marshal(map[string]any{
		"operation": "upload",
		"transfers": []string{"basic"},
		"hash_algo": "sha256",
		"objects": []map[string]any{{
			"oid":  oid,
			"size": size,
		}},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s.git/info/lfs/objects/batch", c.baseURL, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/vnd.git-lfs+json")
	req.Header.Set("Accept", "application/vnd.git-lfs+json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := c.responseError(resp); err != nil {
		return err
	}

	var batch struct {
		Objects []struct {
			OID   string `json:"oid"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
			Actions map[string]lfsAction `json:"actions"`
		} `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(batch.Objects) == 0 {
		return fmt.Errorf("%w: empty batch response", ErrInvalidResponse)
	}

	obj := batch.Objects[0]
	if obj.Error != nil {
		return fmt.Errorf("%w: %s", ErrUploadFailed, obj.Error.Message)
	}

	upload, ok := obj.Actions["upload"]
	if !ok {
		// object already stored server side
		return nil
	}

	content, err := open()
	if err != nil {
		return err
	}
	defer content.Close()

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, upload.Href, content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	putReq.ContentLength = size
	for k, v := range upload.Header {
		putReq.Header.Set(k, v)
	}

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(putResp.Body, 1024))
		return fmt.Errorf("%w: lfs put status %d - %s", ErrUploadFailed, putResp.StatusCode, msg)
	}

	verify, ok := obj.Actions["verify"]
	if !ok {
		return nil
	}

	verifyBody, err := json.Marshal(map[string]any{"oid": oid, "size": size})
	if err != nil {
		return err
	}
	verifyReq, err := http.NewRequestWithContext(ctx, http.MethodPost, verify.Href, bytes.NewReader(verifyBody))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	verifyReq.Header.Set("Content-Type", "application/vnd.git-lfs+json")
	for k, v := range verify.Header {
		verifyReq.Header.Set(k, v)
	}
	c.setHeaders(verifyReq)

	verifyResp, err := c.httpClient.Do(verifyReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer verifyResp.Body.Close()
	return c.responseError(verifyResp)
}

// commit posts a single-file commit as NDJSON: one header line, one entry.
func (c *Client) commit(ctx context.Context, repoID, message string, entry commitEntry) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	if err := enc.Encode(commitEntry{Key: "header", Value: map[string]any{"summary": message}}); err != nil {
		return err
	}
	if err := enc.Encode(entry); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/models/%s/commit/main", c.baseURL, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := c.responseError(resp); err != nil {
		return fmt.Errorf("commit %s: %w", repoID, err)
	}
	return nil
}
