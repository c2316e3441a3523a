package signer

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Skill/ttcodec/bytebuf"
	"github.com/Skill/ttcodec/config"
	"github.com/Skill/ttcodec/crypto"
)

// Ladon produces x-ladon tokens. The signing string is
// "{khronos}-{LicenseID}-{AppID}" and AppID is also mixed into the key.
type Ladon struct {
	LicenseID string
	AppID     string
	log       *zap.SugaredLogger
}

// LadonToken is the content of a decoded Ladon token.
type LadonToken struct {
	Random        uint32
	Khronos       uint32
	SigningString string
}

// NewLadon returns a Ladon signer; empty ids fall back to the observed
// protocol literals.
func NewLadon(licenseID, appID string, log *zap.SugaredLogger) *Ladon {
	if licenseID == "" {
		licenseID = config.DefaultLicenseID
	}
	if appID == "" {
		appID = config.DefaultAppID
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Ladon{LicenseID: licenseID, AppID: appID, log: log}
}

// table derives the round table from MD5(random || AppID) in hex form.
func (l *Ladon) table(random []byte) (*crypto.LadonTable, error) {
	keygen := bytebuf.New(len(random) + len(l.AppID))
	keygen.WriteBytes(random)
	keygen.WriteString(l.AppID)

	md5hex := crypto.MD5Hex(keygen.Bytes())
	l.log.Debugw("ladon key", "md5hex", string(md5hex))
	return crypto.NewLadonTable(md5hex)
}

// Make is deterministic in (khronos, random).
func (l *Ladon) Make(khronos, random uint32) (string, error) {
	data := strconv.FormatUint(uint64(khronos), 10) + "-" + l.LicenseID + "-" + l.AppID

	out := bytebuf.New(4 + crypto.PaddedSize(len(data)+1, crypto.BlockSize))
	out.WriteUint32(bytebuf.LE, random)

	tbl, err := l.table(out.Bytes())
	if err != nil {
		return "", err
	}

	input := crypto.PKCS7Pad([]byte(data), crypto.BlockSize)
	cipher := make([]byte, len(input))
	if err := tbl.EncryptECB(cipher, input); err != nil {
		return "", err
	}
	out.WriteBytes(cipher)
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// Encrypt is Make with a fresh random value.
func (l *Ladon) Encrypt(khronos uint32) (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", errors.Wrap(err, "failed to generate random bytes")
	}
	r, _ := bytebuf.Wrap(b[:]).ReadUint32(bytebuf.LE)
	return l.Make(khronos, r)
}

// Decode inverts Make. A token made under a different AppID decodes to
// garbage and fails with ErrDecodeMismatch.
func (l *Ladon) Decode(token string) (*LadonToken, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Wrap(err, "ladon base64")
	}
	if len(raw) < 4+crypto.BlockSize || (len(raw)-4)%crypto.BlockSize != 0 {
		return nil, errors.Wrapf(ErrInsufficientData, "ladon token of %d bytes", len(raw))
	}

	in := bytebuf.Wrap(raw)
	random, _ := in.ReadUint32(bytebuf.LE)
	tbl, err := l.table(raw[:4])
	if err != nil {
		return nil, err
	}

	plain := make([]byte, in.Readable())
	if err := tbl.DecryptECB(plain, in.Bytes()); err != nil {
		return nil, err
	}
	data, err := crypto.PKCS7Unpad(plain, crypto.BlockSize)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeMismatch, "ladon plaintext %s", hex.EncodeToString(plain))
	}

	head, _, _ := strings.Cut(string(data), "-")
	khronos, err := strconv.ParseUint(head, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeMismatch, "ladon signing string %q", data)
	}
	return &LadonToken{Random: random, Khronos: uint32(khronos), SigningString: string(data)}, nil
}
