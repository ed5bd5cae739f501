// Package attachment validates, fetches and normalizes attachment inputs
// into a uniform in-memory representation with enforced size, type and
// content-id policy.
package attachment

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Processing limits.
const (
	MaxAttachmentSize  = 25 * 1024 * 1024 // per attachment
	MaxTotalSize       = 40 * 1024 * 1024 // whole message budget
	MaxAttachmentCount = 20
	MaxContentIDLength = 128
	fetchTimeout       = 30 * time.Second
)

// Input is one attachment as supplied by a caller: exactly one of Path
// (remote URL) or Content (base64) must be set.
type Input struct {
	Path        string `json:"path,omitempty"`
	Content     string `json:"content,omitempty"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
}

// Processed is the normalized attachment ready for message building.
type Processed struct {
	Content     string `json:"content"` // base64
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	ContentID   string `json:"content_id,omitempty"`
}

var dataURLPrefix = regexp.MustCompile(`^data:[^;,]+;base64,`)

// Processor normalizes attachment inputs. The zero value is not usable;
// construct with NewProcessor.
type Processor struct {
	client *http.Client
}

func NewProcessor() *Processor {
	return &Processor{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// NewProcessorWithClient builds a processor with a custom HTTP client,
// used for testing remote fetches.
func NewProcessorWithClient(client *http.Client) *Processor {
	return &Processor{client: client}
}

// Process validates and normalizes all inputs or fails as a whole: no
// partial results are returned. Output order matches input order.
func (p *Processor) Process(ctx context.Context, inputs []Input) ([]Processed, error) {
	if len(inputs) > MaxAttachmentCount {
		return nil, fmt.Errorf("too many attachments: %d exceeds the limit of %d", len(inputs), MaxAttachmentCount)
	}

	seenContentIDs := make(map[string]bool)
	var totalSize int64
	results := make([]Processed, 0, len(inputs))

	for i, in := range inputs {
		processed, err := p.processOne(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i+1, err)
		}

		if processed.ContentID != "" {
			if seenContentIDs[processed.ContentID] {
				return nil, fmt.Errorf("attachment %d: duplicate content_id %q", i+1, processed.ContentID)
			}
			seenContentIDs[processed.ContentID] = true
		}

		totalSize += processed.Size
		if totalSize > MaxTotalSize {
			return nil, fmt.Errorf("total attachment size %d bytes exceeds the %d byte message budget", totalSize, MaxTotalSize)
		}

		results = append(results, processed)
	}

	return results, nil
}

func (p *Processor) processOne(ctx context.Context, in Input) (Processed, error) {
	if in.Filename == "" {
		return Processed{}, fmt.Errorf("filename is required")
	}
	if in.Path != "" && in.Content != "" {
		return Processed{}, fmt.Errorf("path and content are mutually exclusive")
	}
	if in.Path == "" && in.Content == "" {
		return Processed{}, fmt.Errorf("either path or content is required")
	}
	if len(in.ContentID) > MaxContentIDLength {
		return Processed{}, fmt.Errorf("content_id exceeds %d characters", MaxContentIDLength)
	}

	var (
		data []byte
		err  error
	)
	declaredType := normalizeContentType(in.ContentType)

	if in.Path != "" {
		data, declaredType, err = p.fetchRemote(ctx, in.Path, declaredType)
	} else {
		data, err = decodeInline(in.Content)
	}
	if err != nil {
		return Processed{}, err
	}

	if int64(len(data)) > MaxAttachmentSize {
		return Processed{}, fmt.Errorf("size %d bytes exceeds the %d byte attachment limit", len(data), MaxAttachmentSize)
	}

	contentType := declaredType
	if contentType == "" || contentType == genericContentType {
		contentType = DetectContentType(data)
	}

	if err := checkPolicy(in.Filename, contentType); err != nil {
		return Processed{}, err
	}

	return Processed{
		Content:     base64.StdEncoding.EncodeToString(data),
		Filename:    in.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		ContentID:   in.ContentID,
	}, nil
}

// fetchRemote downloads an attachment over http(s) with a hard timeout and
// size cap. The response content type is used when none was declared.
func (p *Processor) fetchRemote(ctx context.Context, rawURL, declaredType string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid attachment url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("attachment url must use http or https, got %q", u.Scheme)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxAttachmentSize {
		return nil, "", fmt.Errorf("declared size %d bytes exceeds the %d byte attachment limit", resp.ContentLength, MaxAttachmentSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read attachment body: %w", err)
	}
	if len(data) > MaxAttachmentSize {
		return nil, "", fmt.Errorf("size exceeds the %d byte attachment limit", MaxAttachmentSize)
	}

	if declaredType == "" || declaredType == genericContentType {
		if respType := normalizeContentType(resp.Header.Get("Content-Type")); respType != "" {
			declaredType = respType
		}
	}
	return data, declaredType, nil
}

// decodeInline strips a data-URL prefix if present and decodes base64.
func decodeInline(content string) ([]byte, error) {
	content = dataURLPrefix.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		// Tolerate missing padding
		data, err = base64.RawStdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 content: %w", err)
		}
	}
	return data, nil
}
