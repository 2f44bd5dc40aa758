package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 图书模块集成测试
//
// 测试场景覆盖：
// 1. 创建图书（multipart，带封面，需要认证）
// 2. 查询详情/列表/最高评分（公开接口）
// 3. 更新与删除的权限控制
// 4. 评分：每人一票、分值范围、平均分
//
// 需要完整环境（MySQL + Redis + 服务进程），服务未启动时自动跳过。

// TestBookCreate 测试创建图书
func TestBookCreate(t *testing.T) {
	SkipIfServerDown(t)

	_, token := RegisterTestUser(t, "book_creator")

	t.Run("正常创建", func(t *testing.T) {
		payload := map[string]interface{}{
			"title":  "L'Étranger",
			"author": "Albert Camus",
			"year":   1942,
			"genre":  "Roman",
			"grade":  4,
		}

		resp := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), token)
		require.Equal(t, 0, resp.Code, "创建应该成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))

		assert.NotZero(t, data.ID, "图书ID应该大于0")
		assert.Equal(t, "L'Étranger", data.Title)
		assert.NotEmpty(t, data.ImageURL, "应该返回封面URL")
		// 创建者的评分作为种子，平均分等于种子分
		require.Len(t, data.Ratings, 1)
		assert.Equal(t, 4, data.Ratings[0].Grade)
		assert.Equal(t, 4.0, data.AverageRating)
	})

	t.Run("未登录不能创建", func(t *testing.T) {
		payload := map[string]interface{}{
			"title":  "匿名图书",
			"author": "无名氏",
			"year":   2020,
			"genre":  "测试",
		}

		resp := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), "")
		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")
	})

	t.Run("缺少封面应失败", func(t *testing.T) {
		payload := map[string]interface{}{
			"title":  "无封面图书",
			"author": "测试作者",
			"year":   2020,
			"genre":  "测试",
			"grade":  3,
		}

		resp := PostBookForm(t, "POST", BaseURL+"/books", payload, nil, token)
		assert.NotEqual(t, 0, resp.Code, "缺少封面应该失败")
	})

	t.Run("缺少必填字段应失败", func(t *testing.T) {
		payload := map[string]interface{}{
			"title": "只有标题",
		}

		resp := PostBookForm(t, "POST", BaseURL+"/books", payload, GenerateTestImage(t), token)
		assert.NotEqual(t, 0, resp.Code, "缺少作者/年份/体裁应该失败")
	})
}

// TestBookQuery 测试查询接口
func TestBookQuery(t *testing.T) {
	SkipIfServerDown(t)

	_, token := RegisterTestUser(t, "book_reader")
	created := CreateTestBook(t, token, "查询测试图书", 3)

	t.Run("查询详情", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), "")
		require.Equal(t, 0, resp.Code, "查询应该成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, created.ID, data.ID)
		assert.Equal(t, "查询测试图书", data.Title)
	})

	t.Run("查询不存在的图书", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books/99999999", "")
		assert.NotEqual(t, 0, resp.Code, "不存在的图书应该返回错误")
	})

	t.Run("查询列表", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books", "")
		require.Equal(t, 0, resp.Code, "列表查询应该成功: %s", resp.Message)

		var list []BookData
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.NotEmpty(t, list, "列表应该包含刚创建的图书")
	})

	t.Run("查询最高评分", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books/bestrating", "")
		require.Equal(t, 0, resp.Code, "最高评分查询应该成功: %s", resp.Message)

		var list []BookData
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.LessOrEqual(t, len(list), 3, "最多返回3本")
		// 平均分降序
		for i := 1; i < len(list); i++ {
			assert.GreaterOrEqual(t, list[i-1].AverageRating, list[i].AverageRating)
		}
	})
}

// TestBookUpdate 测试更新图书
func TestBookUpdate(t *testing.T) {
	SkipIfServerDown(t)

	_, ownerToken := RegisterTestUser(t, "book_owner")
	created := CreateTestBook(t, ownerToken, "更新前标题", 3)

	t.Run("所有者可以更新字段", func(t *testing.T) {
		update := map[string]interface{}{
			"title": "更新后标题",
		}

		resp := PutJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), update, ownerToken)
		require.Equal(t, 0, resp.Code, "更新应该成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "更新后标题", data.Title)
		// 未提交的字段保持原值
		assert.Equal(t, created.Author, data.Author)
		assert.Equal(t, created.AverageRating, data.AverageRating)
	})

	t.Run("非所有者不能更新", func(t *testing.T) {
		_, otherToken := RegisterTestUser(t, "book_intruder")

		update := map[string]interface{}{
			"title": "篡改标题",
		}

		resp := PutJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), update, otherToken)
		assert.NotEqual(t, 0, resp.Code, "非所有者更新应该被拒绝")
	})

	t.Run("所有者可以更换封面", func(t *testing.T) {
		payload := map[string]interface{}{
			"title": "换封面标题",
		}

		resp := PostBookForm(t, "PUT", fmt.Sprintf("%s/books/%d", BaseURL, created.ID), payload, GenerateTestImage(t), ownerToken)
		require.Equal(t, 0, resp.Code, "换封面应该成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotEmpty(t, data.ImageURL)
		assert.NotEqual(t, created.ImageURL, data.ImageURL, "封面URL应该变化")
	})
}

// TestBookDelete 测试删除图书
func TestBookDelete(t *testing.T) {
	SkipIfServerDown(t)

	_, ownerToken := RegisterTestUser(t, "book_deleter")

	t.Run("非所有者不能删除", func(t *testing.T) {
		created := CreateTestBook(t, ownerToken, "待删除图书", 3)
		_, otherToken := RegisterTestUser(t, "delete_intruder")

		resp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), otherToken)
		assert.NotEqual(t, 0, resp.Code, "非所有者删除应该被拒绝")

		// 记录应该还在
		getResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), "")
		assert.Equal(t, 0, getResp.Code, "图书应该仍然存在")
	})

	t.Run("所有者可以删除", func(t *testing.T) {
		created := CreateTestBook(t, ownerToken, "待删除图书2", 3)

		resp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), ownerToken)
		require.Equal(t, 0, resp.Code, "删除应该成功: %s", resp.Message)

		getResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, created.ID), "")
		assert.NotEqual(t, 0, getResp.Code, "删除后查询应该失败")
	})
}

// TestBookRating 测试评分
func TestBookRating(t *testing.T) {
	SkipIfServerDown(t)

	_, ownerToken := RegisterTestUser(t, "rating_owner")
	created := CreateTestBook(t, ownerToken, "评分测试图书", 4)

	t.Run("其他用户评分后重新计算平均分", func(t *testing.T) {
		_, voterToken := RegisterTestUser(t, "rating_voter")

		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/rating", BaseURL, created.ID), map[string]int{"grade": 2}, voterToken)
		require.Equal(t, 0, resp.Code, "评分应该成功: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Len(t, data.Ratings, 2)
		// (4+2)/2 = 3.0
		assert.Equal(t, 3.0, data.AverageRating)
	})

	t.Run("重复评分应失败", func(t *testing.T) {
		_, voterToken := RegisterTestUser(t, "rating_repeater")

		first := PostJSON(t, fmt.Sprintf("%s/books/%d/rating", BaseURL, created.ID), map[string]int{"grade": 5}, voterToken)
		require.Equal(t, 0, first.Code, "首次评分应该成功: %s", first.Message)

		second := PostJSON(t, fmt.Sprintf("%s/books/%d/rating", BaseURL, created.ID), map[string]int{"grade": 1}, voterToken)
		assert.NotEqual(t, 0, second.Code, "重复评分应该被拒绝")
	})

	t.Run("创建者不能再次评分", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/rating", BaseURL, created.ID), map[string]int{"grade": 5}, ownerToken)
		assert.NotEqual(t, 0, resp.Code, "创建时的评分已占用名额")
	})

	t.Run("分值超出范围应失败", func(t *testing.T) {
		_, voterToken := RegisterTestUser(t, "rating_ranger")

		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/rating", BaseURL, created.ID), map[string]int{"grade": 6}, voterToken)
		assert.NotEqual(t, 0, resp.Code, "6分应该被拒绝")
	})
}
