// Package ttcodec decodes and generates the x-argus and x-ladon request
// signing tokens, and assembles the full signed header set.
package ttcodec

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Skill/ttcodec/config"
	"github.com/Skill/ttcodec/signer"
)

var (
	ErrInsufficientData = signer.ErrInsufficientData
	ErrDecodeMismatch   = signer.ErrDecodeMismatch
	ErrKeySize          = config.ErrKeySize
)

func defaultArgus() (*signer.Argus, error) {
	key, err := config.Default().Key()
	if err != nil {
		return nil, err
	}
	return signer.NewArgus(key, nil)
}

// DecryptArgus returns the protobuf payload signed into token under the
// default signing key. There is no integrity check: validate the payload
// (signer.ArgusToken.Bean) before trusting it.
func DecryptArgus(token string) ([]byte, error) {
	a, err := defaultArgus()
	if err != nil {
		return nil, err
	}
	t, err := a.Decode(token)
	if err != nil {
		return nil, err
	}
	return t.Payload, nil
}

// EncryptArgus builds a token for payload under the default signing key and
// header.
func EncryptArgus(payload []byte, random uint32) (string, error) {
	a, err := defaultArgus()
	if err != nil {
		return "", err
	}
	return a.Encode(payload, random, config.DefaultArgusHeader)
}

// MakeLadon builds the Ladon token for (khronos, random) with the default
// license and app ids.
func MakeLadon(khronos, random uint32) (string, error) {
	return signer.NewLadon("", "", nil).Make(khronos, random)
}

type SignConfig struct {
	RawRequestParameters string
	RequestPayload       string
	SecDeviceID          string
	Cookie               string
	AppID                int
	LicenseID            int
	AppVersion           string
	SdkVersionString     string
	SdkVersionInt        int
	UnixTimestamp        float64
	// SigningKey overrides the default Argus signing key (32 bytes).
	SigningKey []byte
}

type SignedHeaders map[string]string

func (c *SignConfig) applyDefaults() {
	if c.AppID == 0 {
		c.AppID = 1233
	}
	if c.LicenseID == 0 {
		c.LicenseID = 1611921764
	}
	if c.AppVersion == "" {
		c.AppVersion = "39.6.3"
	}
	if c.SdkVersionString == "" {
		c.SdkVersionString = "v05.00.06-ov-android"
	}
	if c.SdkVersionInt == 0 {
		c.SdkVersionInt = 167775296
	}
	if c.UnixTimestamp == 0 {
		c.UnixTimestamp = float64(time.Now().UnixNano()) / 1e9
	}
}

// SignRequest produces x-argus, x-ladon, x-gorgon and the companion headers
// for one request.
func SignRequest(signParams SignConfig) (SignedHeaders, error) {
	signParams.applyDefaults()
	if signParams.RawRequestParameters == "" {
		return nil, errors.New("RawRequestParameters must not be empty")
	}
	params, err := url.ParseQuery(signParams.RawRequestParameters)
	if err != nil {
		return nil, errors.Wrap(err, "parse request parameters")
	}

	khronos := uint32(signParams.UnixTimestamp)
	ticket := int64(signParams.UnixTimestamp*1000 + 0.5)
	appID := strconv.Itoa(signParams.AppID)
	licenseID := strconv.Itoa(signParams.LicenseID)

	var stub string
	if signParams.RequestPayload != "" {
		stub = md5Upper(signParams.RequestPayload)
	}

	key := signParams.SigningKey
	if key == nil {
		if key, err = config.Default().Key(); err != nil {
			return nil, err
		}
	}
	argus, err := signer.NewArgus(key, nil)
	if err != nil {
		return nil, err
	}

	random, err := randomUint32()
	if err != nil {
		return nil, err
	}
	bean := &signer.ArgusBean{
		Version:        2,
		Rand:           uint64(random & 0x7fffffff),
		AppID:          appID,
		DeviceID:       params.Get("device_id"),
		LicenseID:      licenseID,
		AppVersion:     signParams.AppVersion,
		SDKVersion:     signParams.SdkVersionString,
		SDKVersionInt:  uint64(signParams.SdkVersionInt),
		CreateTime:     uint64(khronos),
		BodyHash:       signer.BodyHash(stub),
		QueryHash:      signer.QueryHash(signParams.RawRequestParameters),
		SecDeviceToken: signParams.SecDeviceID,
		PSKVersion:     "none",
		CallType:       738,
	}
	payload, err := bean.Bytes()
	if err != nil {
		return nil, err
	}
	xArgus, err := argus.Encode(payload, random, config.DefaultArgusHeader)
	if err != nil {
		return nil, errors.Wrap(err, "argus")
	}

	xLadon, err := signer.NewLadon(licenseID, appID, nil).Encrypt(khronos)
	if err != nil {
		return nil, errors.Wrap(err, "ladon")
	}

	gorgon := &signer.Gorgon{
		Khronos: khronos,
		Params:  signParams.RawRequestParameters,
		Data:    signParams.RequestPayload,
		Cookies: signParams.Cookie,
	}

	out := SignedHeaders{}
	for k, v := range gorgon.Headers() {
		out[k] = v
	}
	out["x-ss-req-ticket"] = strconv.FormatInt(ticket, 10)
	out["x-ladon"] = xLadon
	out["x-argus"] = xArgus
	if stub != "" {
		out["x-ss-stub"] = stub
		out["content-length"] = strconv.Itoa(len(signParams.RequestPayload))
	}
	return out, nil
}

func randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, errors.Wrap(err, "failed to generate random bytes")
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func md5Upper(s string) string {
	h := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(h[:]))
}
