package handle

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/service"
)

// FormFieldAudio 上传表单中文件字段名.
const FormFieldAudio = "audioFile"

// AudioHandlers 音频接口处理器.
type AudioHandlers struct {
	svc *service.AudioService
	cfg configs.AudioConfig
}

// NewAudioHandlers 创建处理器.
func NewAudioHandlers(svc *service.AudioService, cfg configs.AudioConfig) *AudioHandlers {
	return &AudioHandlers{svc: svc, cfg: cfg}
}

// Upload 处理 multipart 上传，文件字段为 audioFile.
//
//	POST /api/audio/upload -> 201 UploadResponse
func (h *AudioHandlers) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile(FormFieldAudio)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abortWithError(c, service.ErrSizeLimit)
				return
			}

			abortWithMessage(c, http.StatusBadRequest, "No file uploaded")

			return
		}

		f, err := fh.Open()
		if err != nil {
			abortWithError(c, errors.Join(service.ErrStorage, err))
			return
		}
		defer f.Close()

		resp, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
			OriginalFilename: fh.Filename,
			MimeType:         fh.Header.Get("Content-Type"),
			Size:             fh.Size,
			Body:             f,
		}, baseURL(c, h.cfg.PublicBaseURL))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// List 返回全部音频文件，最新的在前.
func (h *AudioHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := h.svc.List(c.Request.Context(), baseURL(c, h.cfg.PublicBaseURL))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, files)
	}
}

// Get 按 uuid 返回文件信息.
func (h *AudioHandlers) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := h.svc.GetByUUID(c.Request.Context(), c.Param("uuid"), baseURL(c, h.cfg.PublicBaseURL))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, info)
	}
}

// Delete 按数字 id 删除.
//
//	DELETE /api/audio/files/:id -> 204 | 404 | 400
func (h *AudioHandlers) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 0)
		if err != nil {
			abortWithMessage(c, http.StatusBadRequest, "Invalid file id")
			return
		}

		ok, err := h.svc.Delete(c.Request.Context(), uint(id))
		if err != nil {
			abortWithError(c, err)
			return
		}

		if !ok {
			abortWithError(c, service.ErrNotFound)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// Download 以附件形式返回文件，文件名为原始文件名.
func (h *AudioHandlers) Download() gin.HandlerFunc {
	return h.serve(true)
}

// Stream 内联返回文件，支持 Range 请求以便拖动播放.
func (h *AudioHandlers) Stream() gin.HandlerFunc {
	return h.serve(false)
}

func (h *AudioHandlers) serve(attachment bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, obj, err := h.svc.Open(c.Request.Context(), c.Param("uuid"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		defer obj.Close()

		w := c.Writer
		w.Header().Set("Content-Type", rec.MimeType)
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("ETag", ETag(rec.UUID, rec.FileSize))
		w.Header().Set("Cache-Control", "private, max-age=3600")

		disposition := "inline"
		if attachment {
			disposition = "attachment"
		}

		w.Header().Set("Content-Disposition", contentDisposition(disposition, rec.OriginalFilename))

		// Last-Modified 使用创建时间，记录不可修改
		http.ServeContent(w, c.Request, rec.Filename, rec.CreatedAt, obj)
	}
}

// contentDisposition 生成 Content-Disposition，非 ASCII 文件名按 RFC 2231 编码.
func contentDisposition(kind, filename string) string {
	filename = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' || r == '\\' {
			return -1
		}

		return r
	}, filename)

	if v := mime.FormatMediaType(kind, map[string]string{"filename": filename}); v != "" {
		return v
	}

	return kind
}
