package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "API 地址")
	adminEmail := flag.String("admin", "admin@example.com", "管理员邮箱")
	adminPassword := flag.String("password", "password123", "管理员密码")
	totalUsers := flag.Int("users", 200, "并发兑换的用户数")
	totalStock := flag.Int("stock", 5, "礼品库存")
	flag.Parse()

	c := &client{base: *baseURL}

	// 1. 管理员创建礼品
	adminToken, err := c.login(*adminEmail, *adminPassword)
	if err != nil {
		log.Fatalf("管理员登录失败: %v", err)
	}
	giftID, err := c.createGift(adminToken, *totalStock)
	if err != nil {
		log.Fatalf("创建礼品失败: %v", err)
	}

	// 2. 注册并登录测试用户
	tokens := make([]string, 0, *totalUsers)
	for i := 0; i < *totalUsers; i++ {
		email := fmt.Sprintf("stress-%s@example.com", uuid.NewString()[:8])
		if err := c.signup(email, "password123"); err != nil {
			log.Fatalf("注册用户失败: %v", err)
		}
		token, err := c.login(email, "password123")
		if err != nil {
			log.Fatalf("用户登录失败: %v", err)
		}
		tokens = append(tokens, token)
	}

	fmt.Printf("开始压测：%d 个用户同时兑换库存为 %d 的礼品 (GiftID: %d)...\n", *totalUsers, *totalStock, giftID)

	// 3. 并发兑换
	var wg sync.WaitGroup
	var success, outOfStock, failed int64
	start := time.Now()

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, err := c.redeem(token, giftID)
			switch {
			case err == nil && status == http.StatusCreated:
				atomic.AddInt64(&success, 1)
			case status == http.StatusBadRequest:
				atomic.AddInt64(&outOfStock, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}(token)
	}

	wg.Wait()
	duration := time.Since(start)

	stock, err := c.giftStock(adminToken, giftID)
	if err != nil {
		log.Printf("查询剩余库存失败: %v", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", len(tokens))
	fmt.Printf("QPS: %.2f\n", float64(len(tokens))/duration.Seconds())
	fmt.Printf("兑换成功: %d (预期: %d)\n", success, min(*totalStock, len(tokens)))
	fmt.Printf("库存不足: %d\n", outOfStock)
	fmt.Printf("其他失败: %d\n", failed)
	fmt.Printf("剩余库存: %d\n", stock)
	fmt.Println("--------------------------------------------------")
}

type client struct {
	base string
}

func (c *client) do(method, path, token string, payload interface{}) (int, *envelope, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, &out, nil
}

func (c *client) login(email, password string) (string, error) {
	status, out, err := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", status, out.Message)
	}
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		return "", err
	}
	return data.AccessToken, nil
}

func (c *client) signup(email, password string) error {
	status, out, err := c.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Stress User",
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("status %d: %s", status, out.Message)
	}
	return nil
}

func (c *client) createGift(token string, stock int) (uint64, error) {
	status, out, err := c.do(http.MethodPost, "/gifts", token, map[string]interface{}{
		"name":        "压测专用礼品",
		"description": "stress test gift",
		"stock":       stock,
		"point":       1,
		"image":       "https://picsum.photos/seed/stress/400/300",
	})
	if err != nil {
		return 0, err
	}
	if status != http.StatusCreated {
		return 0, fmt.Errorf("status %d: %s", status, out.Message)
	}
	var data struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func (c *client) redeem(token string, giftID uint64) (int, error) {
	status, _, err := c.do(http.MethodPost, fmt.Sprintf("/gifts/%d/redeem", giftID), token, map[string]int{"qty": 1})
	return status, err
}

func (c *client) giftStock(token string, giftID uint64) (int, error) {
	_, out, err := c.do(http.MethodGet, fmt.Sprintf("/gifts/%d", giftID), token, nil)
	if err != nil {
		return 0, err
	}
	var data struct {
		Stock int `json:"stock"`
	}
	if err := json.Unmarshal(out.Data, &data); err != nil {
		return 0, err
	}
	return data.Stock, nil
}
