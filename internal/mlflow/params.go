package mlflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/mlpipe/mlpipe/internal/models"
)

func (c *Client) LogParam(ctx context.Context, runID string, key string, value string) error {
	err := c.client.Experiments.LogParam(ctx, ml.LogParam{
		RunId: runID,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to log parameter %s: %w", key, err)
	}

	return nil
}

func (c *Client) LogParams(ctx context.Context, runID string, params []models.Parameter) error {
	for _, param := range params {
		if err := c.LogParam(ctx, runID, param.Key, param.Value); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) LogParamsFromMap(ctx context.Context, runID string, params map[string]string) error {
	return c.LogParams(ctx, runID, paramList(params))
}

// paramList flattens a parameter map into records in sorted key order,
// so repeated invocations log in the same sequence.
func paramList(params map[string]string) []models.Parameter {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]models.Parameter, 0, len(keys))
	for _, key := range keys {
		list = append(list, models.Parameter{Key: key, Value: params[key]})
	}
	return list
}
