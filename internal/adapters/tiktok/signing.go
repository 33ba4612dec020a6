package tiktok

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"time"

	"golang.org/x/crypto/ripemd160"
)

// TokCount要求的防滥用请求头。签名算法来自其前端：
// x-catto为毫秒时间戳，x-midas为sha384(sha256(ts+"64"))，x-ajay为ripemd160(ts)。
const antiAbuseIP = "1.1.1.1"

// signHeaders 生成TokCount的签名请求头
func signHeaders(now time.Time) map[string]string {
	timestamp := strconv.FormatInt(now.UnixMilli(), 10)

	sha256Digest := sha256.Sum256([]byte(timestamp + "64"))
	midas := sha512.Sum384(sha256Digest[:])

	ripemd := ripemd160.New()
	ripemd.Write([]byte(timestamp))

	return map[string]string{
		"x-midas": hex.EncodeToString(midas[:]),
		"x-ajay":  hex.EncodeToString(ripemd.Sum(nil)),
		"x-catto": timestamp,
	}
}
