package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 封装HTTP请求、JSON解析和multipart封面上传，针对运行中的服务执行。
// 服务未启动时通过SkipIfServerDown跳过，不算失败。

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// ServerAddr 服务地址（探活用）
	ServerAddr = "localhost:8080"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// SkipIfServerDown 服务不可达时跳过测试
func SkipIfServerDown(t *testing.T) {
	conn, err := net.DialTimeout("tcp", ServerAddr, 500*time.Millisecond)
	if err != nil {
		t.Skipf("服务未启动(%s)，跳过集成测试", ServerAddr)
	}
	conn.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RatingData 评分数据
type RatingData struct {
	VoterID uint `json:"voter_id"`
	Grade   int  `json:"grade"`
}

// BookData 图书响应数据
type BookData struct {
	ID            uint         `json:"id"`
	OwnerID       uint         `json:"owner_id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	Year          int          `json:"year"`
	Genre         string       `json:"genre"`
	ImageURL      string       `json:"image_url"`
	Ratings       []RatingData `json:"ratings"`
	AverageRating float64      `json:"average_rating"`
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return doRequest(t, req)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("PUT", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return doRequest(t, req)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return doRequest(t, req)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	req, err := http.NewRequest("DELETE", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Authorization", "Bearer "+token)

	return doRequest(t, req)
}

// PostBookForm 发送multipart创建/更新请求（book JSON字段 + image文件）
func PostBookForm(t *testing.T, method, url string, payload interface{}, image []byte, token string) *Response {
	jsonData, err := json.Marshal(payload)
	require.NoError(t, err, "JSON序列化失败")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	err = writer.WriteField("book", string(jsonData))
	require.NoError(t, err, "写入book字段失败")

	if image != nil {
		part, err := writer.CreateFormFile("image", "cover.png")
		require.NoError(t, err, "创建image字段失败")
		_, err = part.Write(image)
		require.NoError(t, err, "写入封面数据失败")
	}

	require.NoError(t, writer.Close(), "关闭multipart writer失败")

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	return doRequest(t, req)
}

// doRequest 执行请求并解析统一响应结构
func doRequest(t *testing.T, req *http.Request) *Response {
	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestImage 生成一张极小的PNG图片作为封面
func GenerateTestImage(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "生成测试图片失败")
	return buf.Bytes()
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, prefix string) (email string, token string) {
	// 1. 注册
	email = GenerateTestEmail(prefix)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	// 2. 登录
	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// CreateTestBook 创建测试图书并返回图书数据
func CreateTestBook(t *testing.T, token, title string, grade int) *BookData {
	payload := map[string]interface{}{
		"title":  title,
		"author": "测试作者",
		"year":   2020,
		"genre":  "测试体裁",
		"grade":  grade,
	}

	resp := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), token)
	require.Equal(t, 0, resp.Code, "创建图书失败: %s", resp.Message)

	var bookData BookData
	err := json.Unmarshal(resp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return &bookData
}
