package paketbild

import (
	"io"
	"net/http"
	"strconv"

	"PaketBild/logger"
	mid "PaketBild/middleware"
	"PaketBild/module/paketbild/service"
	"PaketBild/tools/errs"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	svc *service.ImageService
}

func NewHandler(svc *service.ImageService) *Handler {
	return &Handler{svc: svc}
}

// Register 所有接口都需要鉴权
func (h *Handler) Register(api gin.IRoutes) {
	auth := mid.RouteOpt{IsAuth: true}
	mid.GET(api, "/paketbilder/:paket_id", h.HandlerGetImages, auth)
	mid.POST(api, "/paketbilder/:paket_id", h.HandlerUpload, auth)
	mid.DELETE(api, "/paketbilder/:paket_id", h.HandlerDelete, auth)
	mid.POST(api, "/paketbilder/:paket_id/send/:ip", h.HandlerSend, auth)

	mid.GET(api, "/clients", h.HandlerClients, auth)
	mid.GET(api, "/clients/:ip", h.HandlerClient, auth)
	mid.POST(api, "/clients/:ip/clear", h.HandlerClear, auth)
}

func fail(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("[paketbild] %s %s err=%+v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, errs.AsCode(err))
}

// HandlerGetImages 返回 Base64 字符串数组（裁剪图在前）
func (h *Handler) HandlerGetImages(c *gin.Context) {
	images, err := h.svc.EncodedImages(c.Request.Context(), c.Param("paket_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// HandlerUpload multipart: image=<file>, ausschnitt=true|false
func (h *Handler) HandlerUpload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, errs.ErrArgs.WrapMsg("image file is required"))
		return
	}
	if fh.Size > maxUploadBytes {
		fail(c, errs.ErrArgs.WrapMsg("image too large", "size", fh.Size))
		return
	}
	ausschnitt, _ := strconv.ParseBool(c.PostForm("ausschnitt"))

	f, err := fh.Open()
	if err != nil {
		fail(c, errs.Wrap(err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		fail(c, errs.Wrap(err))
		return
	}

	id, err := h.svc.Upload(c.Request.Context(), c.Param("paket_id"), data, ausschnitt)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) HandlerDelete(c *gin.Context) {
	n, err := h.svc.Delete(c.Request.Context(), c.Param("paket_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// HandlerSend 把包裹图片推给指定 IP 的客户端
func (h *Handler) HandlerSend(c *gin.Context) {
	ip := c.Param("ip")
	n, err := h.svc.PushToClient(c.Request.Context(), c.Param("paket_id"), ip)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ip": ip, "sent": n})
}

func (h *Handler) HandlerClear(c *gin.Context) {
	ip := c.Param("ip")
	if err := h.svc.ClearClient(ip); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ip": ip, "cleared": true})
}

func (h *Handler) HandlerClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clients": h.svc.Clients()})
}

func (h *Handler) HandlerClient(c *gin.Context) {
	ip := c.Param("ip")
	c.JSON(http.StatusOK, gin.H{"ip": ip, "connected": h.svc.IsConnected(ip)})
}
