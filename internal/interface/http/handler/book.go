package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/domain/asset"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// BookHandler 图书HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 创建/换封面走multipart表单，book字段是JSON字符串，image字段是文件
// 3. 调用者身份一律取自认证中间件，不信任请求体里的owner字段
type BookHandler struct {
	createUseCase   *appbook.CreateBookUseCase
	getUseCase      *appbook.GetBookUseCase
	listUseCase     *appbook.ListBooksUseCase
	topRatedUseCase *appbook.TopRatedUseCase
	updateUseCase   *appbook.UpdateBookUseCase
	deleteUseCase   *appbook.DeleteBookUseCase
	rateUseCase     *appbook.RateBookUseCase
	maxUploadBytes  int64
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createUseCase *appbook.CreateBookUseCase,
	getUseCase *appbook.GetBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
	topRatedUseCase *appbook.TopRatedUseCase,
	updateUseCase *appbook.UpdateBookUseCase,
	deleteUseCase *appbook.DeleteBookUseCase,
	rateUseCase *appbook.RateBookUseCase,
	maxUploadBytes int64,
) *BookHandler {
	return &BookHandler{
		createUseCase:   createUseCase,
		getUseCase:      getUseCase,
		listUseCase:     listUseCase,
		topRatedUseCase: topRatedUseCase,
		updateUseCase:   updateUseCase,
		deleteUseCase:   deleteUseCase,
		rateUseCase:     rateUseCase,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Create 创建图书
// @Summary      创建图书
// @Description  multipart表单: book字段为JSON字符串，image字段为封面文件（必填）
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        book formData string true "图书信息JSON"
// @Param        image formData file true "封面图片"
// @Success      201 {object} response.Response{data=appbook.BookDTO} "创建成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未认证"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	callerID := middleware.MustGetUserID(c)

	// 1. 解析book字段
	raw := c.PostForm("book")
	if raw == "" {
		response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "缺少book字段")
		return
	}
	payload, err := dto.ParseBookPayload(raw)
	if err != nil {
		response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "book字段不是合法JSON: "+err.Error())
		return
	}
	if err := binding.Validator.ValidateStruct(payload); err != nil {
		response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	// 2. 读取封面文件（是否必填由领域服务判定）
	upload, err := h.readImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 调用应用层用例
	result, err := h.createUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		CallerID: callerID,
		Title:    payload.Title,
		Author:   payload.Author,
		Year:     payload.Year,
		Genre:    payload.Genre,
		Grade:    payload.Grade,
		Image:    upload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Get 查询单本图书
// @Summary      查询图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDTO} "查询成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	bookID, err := parseBookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// List 查询全部图书
// @Summary      查询图书列表
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]appbook.BookDTO} "查询成功"
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	result, err := h.listUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TopRated 查询评分最高的图书
// @Summary      查询评分最高的图书（最多3本）
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]appbook.BookDTO} "查询成功"
// @Router       /api/v1/books/bestrating [get]
func (h *BookHandler) TopRated(c *gin.Context) {
	result, err := h.topRatedUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Update 更新图书
// @Summary      更新图书
// @Description  JSON请求只改字段；multipart请求可同时换封面（book字段为JSON字符串）
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDTO} "更新成功"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	callerID := middleware.MustGetUserID(c)

	bookID, err := parseBookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var payload *dto.UpdateBookPayload
	var upload *asset.Upload

	// 两种请求格式：带封面的multipart，或纯JSON
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if raw := c.PostForm("book"); raw != "" {
			payload, err = dto.ParseUpdateBookPayload([]byte(raw))
			if err != nil {
				response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "book字段不是合法JSON: "+err.Error())
				return
			}
		} else {
			payload = &dto.UpdateBookPayload{}
		}
		upload, err = h.readImage(c)
		if err != nil {
			response.Error(c, err)
			return
		}
	} else {
		payload = &dto.UpdateBookPayload{}
		if err := c.ShouldBindJSON(payload); err != nil {
			response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "参数错误: "+err.Error())
			return
		}
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		CallerID: callerID,
		BookID:   bookID,
		Title:    payload.Title,
		Author:   payload.Author,
		Year:     payload.Year,
		Genre:    payload.Genre,
		Image:    upload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete 删除图书
// @Summary      删除图书（连同封面文件）
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	callerID := middleware.MustGetUserID(c)

	bookID, err := parseBookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), callerID, bookID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Rate 提交评分
// @Summary      提交评分（0-5，每人一票，作者创建时的评分即其一票）
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RateBookRequest true "评分"
// @Success      200 {object} response.Response{data=appbook.BookDTO} "评分成功"
// @Failure      400 {object} response.Response "参数错误或重复评分"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/rating [post]
func (h *BookHandler) Rate(c *gin.Context) {
	callerID := middleware.MustGetUserID(c)

	bookID, err := parseBookID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, errors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.rateUseCase.Execute(c.Request.Context(), callerID, bookID, *req.Grade)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// readImage 读取multipart中的封面文件，未携带时返回nil
func (h *BookHandler) readImage(c *gin.Context) (*asset.Upload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// 未携带文件不是错误，是否必填由领域层判定
		return nil, nil
	}

	if fileHeader.Size > h.maxUploadBytes {
		return nil, errors.New(errors.ErrCodeInvalidParams, "封面文件超过大小限制")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, errors.WrapWithCode(errors.ErrCodeInvalidParams, err, "封面文件读取失败")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, errors.WrapWithCode(errors.ErrCodeInvalidParams, err, "封面文件读取失败")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, errors.New(errors.ErrCodeInvalidParams, "封面文件超过大小限制")
	}

	return &asset.Upload{Data: data, Filename: fileHeader.Filename}, nil
}

// parseBookID 解析路径参数中的图书ID
func parseBookID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New(errors.ErrCodeInvalidParams, "图书ID不合法")
	}
	return uint(id), nil
}
