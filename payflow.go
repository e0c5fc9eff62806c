/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package payflow

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/database"
	"github.com/kaptain9960/payflow/internal/cache"
	redis_db "github.com/kaptain9960/payflow/internal/redis-db"
)

// Payflow is the workflow service. Every step of every flow is a method on
// this struct taking explicit inputs; nothing is read from ambient session
// state.
type Payflow struct {
	redis      redis.UniversalClient
	cache      cache.Cache
	datasource database.IDataSource
}

// NewPayflow initializes the service with the provided datasource. It fetches
// the configuration and connects the Redis client used for step locking and
// the account read cache.
func NewPayflow(db database.IDataSource) (*Payflow, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	accountCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	return &Payflow{datasource: db, redis: redisClient.Client(), cache: accountCache}, nil
}
