package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// -------------------- 账户API并发压测 --------------------

type APITestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	AverageLatency     time.Duration
	MaxLatency         time.Duration
	MinLatency         time.Duration
	mu                 sync.Mutex
}

func (s *APITestStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	if success {
		s.SuccessfulRequests++
		if s.AverageLatency == 0 {
			s.AverageLatency = latency
			s.MaxLatency = latency
			s.MinLatency = latency
		} else {
			s.AverageLatency = (s.AverageLatency + latency) / 2
			if latency > s.MaxLatency {
				s.MaxLatency = latency
			}
			if latency < s.MinLatency {
				s.MinLatency = latency
			}
		}
	} else {
		s.FailedRequests++
	}
}

var httpClient = &http.Client{Timeout: 8 * time.Second}

func postJSON(url string, body interface{}) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func get(url string) (int, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// worker 每个协程注册一个独立用户，然后反复登录+拉取目录
func worker(base string, id, perGoroutine int, stats *APITestStats) {
	username := fmt.Sprintf("bench_user_%d_%d", time.Now().UnixMilli(), id)
	password := "bench123456"

	start := time.Now()
	code, err := postJSON(base+"/auth/register", map[string]string{
		"username": username,
		"email":    username + "@bench.local",
		"password": password,
	})
	stats.Add(err == nil && code == 201, time.Since(start))

	for j := 0; j < perGoroutine; j++ {
		start = time.Now()
		code, err = postJSON(base+"/auth/login", map[string]string{
			"username": username,
			"password": password,
		})
		stats.Add(err == nil && code == 200, time.Since(start))

		start = time.Now()
		code, err = get(base + "/users")
		stats.Add(err == nil && code == 200, time.Since(start))

		time.Sleep(5 * time.Millisecond)
	}
}

func runHTTPBench(base string, concurrency, perGoroutine int) {
	fmt.Println("\n=== 账户API并发测试开始 ===")
	fmt.Printf("目标: %s 并发: %d 每协程循环: %d\n", base, concurrency, perGoroutine)

	stats := &APITestStats{}
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(base, id, perGoroutine, stats)
		}(i)
	}

	wg.Wait()

	took := time.Since(start)
	fmt.Println("\n=== 账户API测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总请求: %d 成功: %d 失败: %d\n", stats.TotalRequests, stats.SuccessfulRequests, stats.FailedRequests)
	fmt.Printf("延迟 平均: %v 最大: %v 最小: %v\n", stats.AverageLatency, stats.MaxLatency, stats.MinLatency)
	if took > 0 {
		qps := float64(stats.SuccessfulRequests) / took.Seconds()
		fmt.Printf("QPS: %.2f\n", qps)
	}
	if stats.TotalRequests > 0 {
		rate := float64(stats.SuccessfulRequests) / float64(stats.TotalRequests) * 100
		fmt.Printf("成功率: %.2f%%\n", rate)
	}
}

// -------------------- 入口 --------------------

func main() {
	// 解析命令行参数
	concurrency := 5
	perGoroutine := 10

	if len(os.Args) > 1 {
		if val, err := strconv.Atoi(os.Args[1]); err == nil {
			concurrency = val
		}
	}
	if len(os.Args) > 2 {
		if val, err := strconv.Atoi(os.Args[2]); err == nil {
			perGoroutine = val
		}
	}

	baseURL := "http://localhost:8080"
	if env := os.Getenv("BENCH_BASE_URL"); env != "" {
		baseURL = env
	}

	fmt.Println("=== 账户服务并发测试 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	runHTTPBench(baseURL, concurrency, perGoroutine)

	fmt.Println("\n=== 测试完成 ===")
}
