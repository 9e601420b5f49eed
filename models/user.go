package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a participant profile, upserted by email when a registration is submitted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         uuid.UUID `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()" json:"id"`
	Email      string    `bun:"email,notnull,unique" json:"email"`
	Nama       string    `bun:"nama,notnull" json:"nama"`
	NIK        string    `bun:"nik,notnull" json:"nik"`
	NomerHP    string    `bun:"nomer_hp,notnull" json:"nomerHp"`
	Alamat     string    `bun:"alamat,notnull" json:"alamat"`
	Provinsi   string    `bun:"provinsi" json:"provinsi"`
	Kabupaten  string    `bun:"kabupaten" json:"kabupaten"`
	Kecamatan  string    `bun:"kecamatan" json:"kecamatan"`
	Kelurahan  string    `bun:"kelurahan" json:"kelurahan"`
	UserType   string    `bun:"user_type,notnull" json:"userType"`
	JenisTiket string    `bun:"jenis_tiket,notnull" json:"jenisTiket"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
