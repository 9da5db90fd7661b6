package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag tags read responses with a content hash so clients can
// revalidate cheaply. A matching If-None-Match collapses to 304 with no body.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	etag, ok := computeETag(payload)

	if !ok {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)

	if clientHasCurrent(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func computeETag(payload interface{}) (string, bool) {
	b, err := json.Marshal(payload)

	if err != nil {
		return "", false
	}

	sum := sha256.Sum256(b)

	return `"` + hex.EncodeToString(sum[:]) + `"`, true
}

func clientHasCurrent(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)

	if ifNoneMatch == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	want := stripWeakPrefix(current)

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if stripWeakPrefix(candidate) == want {
			return true
		}
	}

	return false
}

func stripWeakPrefix(raw string) string {
	v := strings.TrimSpace(raw)

	// RFC 9110 weak validators look like W/"abc"
	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
