package cook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// The cook service packages a recording into a downloadable archive:
//  1. POST /api/v1/recordings/{id}/job?key={key}  -> start the cook job
//  2. GET  /api/v1/recordings/{id}/job?key={key}  -> poll until "complete"
//  3. GET  /dl/{outputFileName}                   -> download the archive

type jobEnvelope struct {
	Job jobState `json:"job"`
}

type jobState struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	OutputFileName string `json:"outputFileName"`
}

// Speakers returns the speaker list derived from the fetched archive.
// The cook service exposes no standalone metadata endpoint; speaker
// identity lives in the archive entry names, so Fetch must run first.
func (c *implClient) Speakers(ctx context.Context) ([]source.SpeakerInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetched {
		return nil, errs.Acquisition("speaker metadata unavailable before fetch for recording "+c.recording.ID, nil)
	}
	out := make([]source.SpeakerInfo, len(c.speakers))
	copy(out, c.speakers)
	return out, nil
}

// Fetch runs the cook job, downloads the archive and extracts per-speaker
// tracks into dir. The combined cook+download work observes the configured
// wall-clock deadline.
func (c *implClient) Fetch(ctx context.Context, dir string) ([]source.AudioTrack, error) {
	deadline := time.Duration(c.cfg.DownloadTimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	jobURL := fmt.Sprintf("%s/api/v1/recordings/%s/job?key=%s",
		c.baseURL, c.recording.ID, c.recording.AccessKey)

	c.startJob(ctx, jobURL)

	outputName, err := c.pollUntilComplete(ctx, jobURL)
	if err != nil {
		return nil, err
	}

	dlURL := fmt.Sprintf("%s/dl/%s", c.baseURL, outputName)
	c.logger.Info(ctx, "Downloading cooked archive from %s", dlURL)

	data, err := c.downloadBytes(ctx, dlURL)
	if err != nil {
		return nil, err
	}

	tracks, err := source.ExtractArchive(data, dir)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.speakers = c.speakers[:0]
	for _, t := range tracks {
		c.speakers = append(c.speakers, t.Speaker)
	}
	c.fetched = true
	c.mu.Unlock()

	c.logger.Info(ctx, "Fetched %d tracks for recording %s", len(tracks), c.recording.ID)
	return tracks, nil
}

// startJob POSTs the cook request. Failures are non-fatal: the job may
// already be running from a previous attempt, and polling reports the
// authoritative state.
func (c *implClient) startJob(ctx context.Context, jobURL string) {
	payload := map[string]interface{}{
		"type": "recording",
		"options": map[string]interface{}{
			"format":     c.cfg.Format,
			"container":  c.cfg.Container,
			"dynaudnorm": false,
		},
	}
	body, _ := json.Marshal(payload)

	c.logger.Info(ctx, "Starting cook job for recording %s (format=%s, container=%s)",
		c.recording.ID, c.cfg.Format, c.cfg.Container)

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, jobURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn(ctx, "Cook job start request build failed (non-fatal): %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "Cook job start request failed (non-fatal): %v", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.logger.Info(ctx, "Cook job started (HTTP %d)", resp.StatusCode)
	} else {
		c.logger.Warn(ctx, "Cook job start returned HTTP %d", resp.StatusCode)
	}
}

func (c *implClient) pollUntilComplete(ctx context.Context, jobURL string) (string, error) {
	pollDeadline := time.Duration(c.cfg.PollTimeoutSec) * time.Second
	pollCtx, cancel := context.WithTimeout(ctx, pollDeadline)
	defer cancel()

	c.logger.Info(ctx, "Polling cook job for recording %s (timeout=%ds)",
		c.recording.ID, c.cfg.PollTimeoutSec)

	for {
		name, done, err := c.pollOnce(pollCtx, jobURL)
		if err != nil {
			return "", err
		}
		if done {
			return name, nil
		}

		select {
		case <-pollCtx.Done():
			return "", errs.AcquisitionTimeout(
				fmt.Sprintf("cook job polling timed out for recording %s", c.recording.ID),
				pollCtx.Err())
		case <-time.After(jobPollInterval):
		}
	}
}

// pollOnce checks the job state. Transient poll failures return done=false
// so the loop keeps going until the deadline.
func (c *implClient) pollOnce(ctx context.Context, jobURL string) (string, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, jobURL, nil)
	if err != nil {
		return "", false, errs.Acquisition("build job poll request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, nil
		}
		c.logger.Warn(ctx, "Job poll error: %v", err)
		return "", false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn(ctx, "Job poll returned HTTP %d", resp.StatusCode)
		io.Copy(io.Discard, resp.Body)
		return "", false, nil
	}

	var envelope jobEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn(ctx, "Job poll decode error: %v", err)
		return "", false, nil
	}

	switch envelope.Job.Status {
	case "complete":
		if envelope.Job.OutputFileName == "" {
			return "", false, errs.Acquisition("cook job complete but no output file name", nil)
		}
		c.logger.Info(ctx, "Cook job complete, output: %s", envelope.Job.OutputFileName)
		return envelope.Job.OutputFileName, true, nil
	case "error", "failed":
		return "", false, errs.Acquisition("cook job failed with status "+envelope.Job.Status, nil)
	default:
		return "", false, nil
	}
}

// downloadBytes fetches the cooked archive with exponential-backoff
// retries. Transport errors and 5xx (plus 408/429) are retried; other 4xx
// are permanent.
func (c *implClient) downloadBytes(ctx context.Context, url string) ([]byte, error) {
	var data []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn(ctx, "Download attempt failed: %v", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			err := fmt.Errorf("download returned HTTP %d from %s", resp.StatusCode, url)
			if retryableStatus(resp.StatusCode) {
				c.logger.Warn(ctx, "Download attempt: %v", err)
				return err
			}
			return backoff.Permanent(err)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			c.logger.Warn(ctx, "Download body read failed: %v", err)
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.RandomizationFactor = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries)), ctx))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, errs.AcquisitionTimeout("archive download timed out from "+url, err)
		}
		return nil, errs.Acquisition("archive download failed from "+url, err)
	}

	c.logger.Debug(ctx, "Downloaded %d bytes from %s", len(data), url)
	return data, nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}
