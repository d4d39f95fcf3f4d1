package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implDetector struct {
	botID          string
	watchChannelID uint64
	urlPattern     *regexp.Regexp
	logger         logger.Logger
}

// New creates a Detector for the given recording bot identity, watch
// channel and host allowlist.
func New(botID string, watchChannelID uint64, domainAllowlist []string, log logger.Logger) Detector {
	hosts := make([]string, 0, len(domainAllowlist))
	for _, d := range domainAllowlist {
		hosts = append(hosts, regexp.QuoteMeta(d))
	}
	pattern := fmt.Sprintf(
		`https?://(%s)/rec/([a-zA-Z0-9]+)\?key=([a-zA-Z0-9]+)`,
		strings.Join(hosts, "|"),
	)
	return &implDetector{
		botID:          botID,
		watchChannelID: watchChannelID,
		urlPattern:     regexp.MustCompile(pattern),
		logger:         log,
	}
}
