//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// PrewarmRequest повторяет форму internal/domain.PrewarmRequest
type PrewarmRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
	RequestID    string  `json:"request_id,omitempty"`
}

// Ручная публикация задания на прогрев ward-кеша:
//
//	go run scripts/test_publish.go -redis localhost:6379 -lat 12.9716 -lng 77.5946 -radius 1500
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	stream := flag.String("stream", "siteintel:stream:prewarm", "Prewarm stream name")
	lat := flag.Float64("lat", 12.9716, "Latitude")
	lng := flag.Float64("lng", 77.5946, "Longitude")
	radius := flag.Float64("radius", 1500, "Radius in meters")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	req := PrewarmRequest{
		Lat:          *lat,
		Lng:          *lng,
		RadiusMeters: *radius,
	}

	data, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("Failed to marshal request: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish request: %v", err)
	}

	fmt.Printf("✅ Prewarm request published!\n")
	fmt.Printf("   Stream: %s\n", *stream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Coordinates: %.6f, %.6f\n", req.Lat, req.Lng)
	fmt.Printf("   Radius: %.0f m\n", req.RadiusMeters)
}
