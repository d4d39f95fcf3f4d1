package cook

import (
	"net/http"
	"sync"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

type implClient struct {
	http      *http.Client
	recording source.Recording
	cfg       config.SourceConfig
	logger    logger.Logger
	baseURL   string

	mu       sync.Mutex
	speakers []source.SpeakerInfo
	fetched  bool
}

// New creates a cook-API audio source bound to one recording. The shared
// httpClient is reused across recordings; per-request deadlines come from
// contexts, so its own Timeout stays zero.
func New(httpClient *http.Client, rec source.Recording, cfg config.SourceConfig, log logger.Logger) source.Source {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 0}
	}
	return &implClient{
		http:      httpClient,
		recording: rec,
		cfg:       cfg,
		logger:    log,
		baseURL:   "https://" + rec.Domain,
	}
}

// jobPollInterval is the wait between job readiness checks.
const jobPollInterval = 2 * time.Second
