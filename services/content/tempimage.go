package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/atelierhub/atelier/storage"
)

// ErrTempIDMismatch reports a submission whose uploaded file count does not
// line up with the placeholder token list.
var ErrTempIDMismatch = errors.New("content: temp image count does not match uploaded files")

// Upload is one uploaded image body.
type Upload struct {
	Data        []byte
	ContentType string
}

// ResolveTempImages uploads each pending image under the entity's content
// prefix and substitutes its public URL for the matching TEMP_IMAGE_{id}
// placeholder in body. Returned keys list every object created, including
// ones created before a mid-sequence failure, so the caller can compensate.
func ResolveTempImages(ctx context.Context, store storage.ObjectStore, bucket string, entityID uint, body string, files []Upload, tempIDs []string) (resolved string, uploadedKeys []string, err error) {
	if len(files) != len(tempIDs) {
		return body, nil, ErrTempIDMismatch
	}
	resolved = body
	for i, file := range files {
		key := storage.ContentImageKey(entityID, uuid.NewString())
		publicURL, uerr := store.Upload(ctx, bucket, key, file.Data, contentTypeOrWebp(file.ContentType))
		if uerr != nil {
			return body, uploadedKeys, fmt.Errorf("upload content image: %w", uerr)
		}
		uploadedKeys = append(uploadedKeys, key)
		// Tokens come from the client, so escape before building the pattern.
		token := regexp.MustCompile(`TEMP_IMAGE_` + regexp.QuoteMeta(tempIDs[i]))
		resolved = token.ReplaceAllLiteralString(resolved, publicURL)
	}
	return resolved, uploadedKeys, nil
}

func contentTypeOrWebp(ct string) string {
	if ct == "" {
		return "image/webp"
	}
	return ct
}
