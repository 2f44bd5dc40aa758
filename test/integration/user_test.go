package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 用户模块集成测试
//
// 集成测试使用真实的数据库和Redis，验证完整的API流程：
// Handler → UseCase → Service → Repository → Database
//
// 运行方式：
//   go test -v ./test/integration/...
// 需要先启动服务，否则自动跳过。

// TestUserRegister 测试用户注册功能
func TestUserRegister(t *testing.T) {
	SkipIfServerDown(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.Equal(t, 0, resp.Code, "注册应该成功")

		var data RegisterData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID, "用户ID应该大于0")
		assert.Equal(t, email, data.Email, "返回的邮箱应该与请求一致")
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
		}

		resp1 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, resp1.Code, "第一次注册应该成功")

		resp2 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp2.Code, "重复邮箱注册应该失败")
		assert.Contains(t, resp2.Message, "邮箱", "错误信息应该提示邮箱相关")
	})

	t.Run("密码过短应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    GenerateTestEmail("short_pwd"),
			"password": "123",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "密码过短应该失败")
	})

	t.Run("邮箱格式错误应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    "invalid-email",
			"password": "Test1234",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "邮箱格式错误应该失败")
	})
}

// TestUserLogin 测试用户登录功能
func TestUserLogin(t *testing.T) {
	SkipIfServerDown(t)

	// 准备测试数据：先注册一个用户
	email := GenerateTestEmail("login_test")
	password := "Test1234"
	registerReq := map[string]string{
		"email":    email,
		"password": password,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "准备测试数据：注册用户")

	t.Run("正常登录", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": password,
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.Equal(t, 0, resp.Code, "登录应该成功")

		var data LoginData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotEmpty(t, data.AccessToken, "应该返回access_token")
		assert.NotEmpty(t, data.RefreshToken, "应该返回refresh_token")
		// JWT格式: header.payload.signature
		assert.Contains(t, data.AccessToken, ".", "JWT Token应该包含点号分隔符")
	})

	t.Run("密码错误应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": "WrongPassword1",
		}

		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "密码错误应该失败")
	})

	t.Run("用户不存在应失败", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    "nonexistent@test.com",
			"password": "Test1234",
		}

		// 统一返回"邮箱或密码错误"，不暴露用户是否存在
		resp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "用户不存在应该失败")
	})

	t.Run("Token可以访问受保护接口", func(t *testing.T) {
		loginReq := map[string]string{
			"email":    email,
			"password": password,
		}

		loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
		require.Equal(t, 0, loginResp.Code, "登录失败")

		var loginData LoginData
		err := json.Unmarshal(loginResp.Data, &loginData)
		require.NoError(t, err, "解析登录响应失败")

		book := CreateTestBook(t, loginData.AccessToken, "Token验证图书", 3)
		assert.NotZero(t, book.ID, "使用有效Token应该可以创建图书")
	})

	t.Run("无效Token应被拒绝", func(t *testing.T) {
		payload := map[string]interface{}{
			"title":  "无效Token图书",
			"author": "测试作者",
			"year":   2020,
			"genre":  "测试",
		}

		resp := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), "invalid.jwt.token")
		assert.NotEqual(t, 0, resp.Code, "无效Token应该被拒绝")
	})
}

// TestUserAuthFlow 测试完整的认证流程
// 端到端验证：注册 → 登录 → 创建图书 → 登出 → Token失效
func TestUserAuthFlow(t *testing.T) {
	SkipIfServerDown(t)

	// Step 1: 注册新用户
	email := GenerateTestEmail("auth_flow")
	password := "Test1234"

	registerReq := map[string]string{
		"email":    email,
		"password": password,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败")

	// Step 2: 登录获取Token
	loginReq := map[string]string{
		"email":    email,
		"password": password,
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败")

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")
	token := loginData.AccessToken

	// Step 3: 使用Token创建图书
	book := CreateTestBook(t, token, "认证流程测试图书", 4)
	require.NotZero(t, book.ID, "创建图书失败")

	// Step 4: 登出
	logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
	require.Equal(t, 0, logoutResp.Code, "登出失败: %s", logoutResp.Message)

	// Step 5: 登出后的Token应该已进入黑名单
	payload := map[string]interface{}{
		"title":  "登出后创建",
		"author": "测试作者",
		"year":   2020,
		"genre":  "测试",
	}

	afterLogout := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), token)
	assert.NotEqual(t, 0, afterLogout.Code, "登出后Token应该失效")
}
