package service

import (
	"context"
	"strings"

	"PaketBild/logger"
	"PaketBild/module/paketbild/model"
	"PaketBild/tools/errs"
)

type Repository interface {
	ListByPaket(ctx context.Context, paketID string) ([]model.PaketBild, error)
	Insert(ctx context.Context, b *model.PaketBild) (int64, error)
	DeleteByPaket(ctx context.Context, paketID string) (int64, error)
}

// Cache 可选；为 nil 时直接读库
type Cache interface {
	Get(ctx context.Context, paketID string) ([]string, bool, error)
	Set(ctx context.Context, paketID string, images []string) error
	Invalidate(ctx context.Context, paketID string) error
}

// Pusher 实时推送网关暴露给命令接口的能力
type Pusher interface {
	IsConnected(ip string) bool
	SendImages(ip string, images []string) error
	SendClear(ip string) error
	ListConnected() []string
}

type ImageService struct {
	repo   Repository
	cache  Cache
	pusher Pusher
}

func NewImageService(repo Repository, cache Cache, pusher Pusher) *ImageService {
	return &ImageService{repo: repo, cache: cache, pusher: pusher}
}

// EncodedImages 返回包裹的 Base64 图片（裁剪图在前）；没有记录时返回 ErrRecordNotFound
func (s *ImageService) EncodedImages(ctx context.Context, paketID string) ([]string, error) {
	paketID = strings.TrimSpace(paketID)
	if paketID == "" {
		return nil, errs.ErrArgs.WrapMsg("paket_id is empty")
	}

	if s.cache != nil {
		images, ok, err := s.cache.Get(ctx, paketID)
		if err != nil {
			// 缓存故障不影响读库
			logger.Warnf("[paketbild] cache get paket_id=%s err=%v", paketID, err)
		} else if ok {
			return images, nil
		}
	}

	bilder, err := s.repo.ListByPaket(ctx, paketID)
	if err != nil {
		return nil, err
	}
	if len(bilder) == 0 {
		return nil, errs.ErrRecordNotFound.WrapMsg("Paket ID " + paketID + " not found")
	}
	images := model.EncodeAll(bilder)

	if s.cache != nil {
		if err := s.cache.Set(ctx, paketID, images); err != nil {
			logger.Warnf("[paketbild] cache set paket_id=%s err=%v", paketID, err)
		}
	}
	return images, nil
}

func (s *ImageService) Upload(ctx context.Context, paketID string, bild []byte, ausschnitt bool) (int64, error) {
	paketID = strings.TrimSpace(paketID)
	if paketID == "" || len(bild) == 0 {
		return 0, errs.ErrArgs.WrapMsg("paket_id and image are required")
	}
	id, err := s.repo.Insert(ctx, &model.PaketBild{Bild: bild, PaketID: paketID, Ausschnitt: ausschnitt})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, paketID)
	return id, nil
}

func (s *ImageService) Delete(ctx context.Context, paketID string) (int64, error) {
	paketID = strings.TrimSpace(paketID)
	if paketID == "" {
		return 0, errs.ErrArgs.WrapMsg("paket_id is empty")
	}
	n, err := s.repo.DeleteByPaket(ctx, paketID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, paketID)
	return n, nil
}

// PushToClient 读取包裹图片并推送到 ip 的房间。
// 先做在线检查，避免为离线客户端读库。
func (s *ImageService) PushToClient(ctx context.Context, paketID, ip string) (int, error) {
	if !s.pusher.IsConnected(ip) {
		return 0, errs.ErrNotConnected.WrapMsg("push paket", "ip", ip, "paket_id", paketID)
	}
	images, err := s.EncodedImages(ctx, paketID)
	if err != nil {
		return 0, err
	}
	if err := s.pusher.SendImages(ip, images); err != nil {
		return 0, err
	}
	return len(images), nil
}

func (s *ImageService) ClearClient(ip string) error {
	return s.pusher.SendClear(ip)
}

func (s *ImageService) Clients() []string {
	return s.pusher.ListConnected()
}

func (s *ImageService) IsConnected(ip string) bool {
	return s.pusher.IsConnected(ip)
}

func (s *ImageService) invalidate(ctx context.Context, paketID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, paketID); err != nil {
		logger.Warnf("[paketbild] cache invalidate paket_id=%s err=%v", paketID, err)
	}
}
