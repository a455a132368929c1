package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

// formFields flattens the JSON form of v into string fields. Nested values
// are sent as their JSON text.
func formFields(v any) (url.Values, error) {
	fields := url.Values{}
	if v == nil {
		return fields, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("form body must be an object: %w", err)
	}
	for k, val := range m {
		switch x := val.(type) {
		case nil:
		case string:
			fields.Set(k, x)
		case bool:
			if x {
				fields.Set(k, "1")
			} else {
				fields.Set(k, "0")
			}
		case float64:
			fields.Set(k, strconv.FormatFloat(x, 'f', -1, 64))
		default:
			nested, err := json.Marshal(x)
			if err != nil {
				return nil, err
			}
			fields.Set(k, string(nested))
		}
	}
	return fields, nil
}

func multipartBody(fields url.Values, files []models.Attachment) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, a := range files {
		if err := attach(mw, a); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

func attach(mw *multipart.Writer, a models.Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("open attachment %s: %w", a.Field, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(a.Field, filepath.Base(a.Path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read attachment %s: %w", a.Field, err)
	}
	return nil
}
