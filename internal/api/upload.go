package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadImage sends an image as the multipart field "image" and returns the
// encoded image data to attach to the next chat request.
func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload-image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp uploadResponse
	if err := c.do(c.httpClient, req, "upload image", "Failed to upload image", &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", &StatusError{StatusCode: http.StatusOK, Message: resp.Error}
	}
	if resp.ImageData == "" {
		return "", fmt.Errorf("upload image: response has no image data")
	}
	return resp.ImageData, nil
}
