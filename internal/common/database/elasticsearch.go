// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"phalanx-matcher/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// minKNNMajorVersion is the first release with the top-level knn search option.
const minKNNMajorVersion = 8

// ElasticsearchClient wraps the client behind the funder vector index.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch addresses are empty")
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	esCfg := elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    retries,
		RetryOnStatus: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

type clusterInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Ping fetches cluster info and rejects clusters too old for kNN search.
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Info(c.Client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	var info clusterInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode elasticsearch info: %w", err)
	}
	major, err := majorVersion(info.Version.Number)
	if err != nil {
		return err
	}
	if major < minKNNMajorVersion {
		return fmt.Errorf("elasticsearch %s on cluster %q does not support knn search", info.Version.Number, info.ClusterName)
	}
	return nil
}

func majorVersion(v string) (int, error) {
	head, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("unrecognised elasticsearch version %q", v)
	}
	return major, nil
}
