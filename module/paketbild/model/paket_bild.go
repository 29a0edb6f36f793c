package model

import "encoding/base64"

// PaketBild 一个包裹的一张图片；Ausschnitt 为 true 的是裁剪图，排在前面
type PaketBild struct {
	ID         int64  `json:"id"`
	Bild       []byte `json:"-"`
	PaketID    string `json:"paket_id"`
	Ausschnitt bool   `json:"ausschnitt"`
}

func (p *PaketBild) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Bild)
}

// EncodeAll keeps the input order.
func EncodeAll(bilder []PaketBild) []string {
	out := make([]string, 0, len(bilder))
	for i := range bilder {
		out = append(out, bilder[i].Base64())
	}
	return out
}
