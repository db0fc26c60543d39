package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

const uploadPath = "/open-apis/im/v1/images"

type uploadResponse struct {
	Msg  string `json:"msg"`
	Data struct {
		ImageKey string `json:"image_key"`
	} `json:"data"`
}

// uploadImage normalizes the input and uploads it as a message image,
// returning the opaque image key the service assigns.
func (b *Bot) uploadImage(ctx context.Context, in Input, token string) (string, error) {
	media, err := Normalize(in)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("image_type", "message"); err != nil {
		return "", fmt.Errorf("write image_type field: %w", err)
	}

	// CreateFormFile would force application/octet-stream; the part has to
	// carry the resolved content type.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="image"`)
	header.Set("Content-Type", media.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, media.Reader); err != nil {
		return "", fmt.Errorf("copy image data: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+uploadPath, &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "upload image", Err: err}
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &TransportError{Op: "decode upload response", Err: err}
	}
	if result.Msg != "ok" {
		return "", &UploadError{Msg: result.Msg}
	}
	return result.Data.ImageKey, nil
}
