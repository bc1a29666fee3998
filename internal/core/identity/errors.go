package identity

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrNilPrivateKey 私钥为 nil
	ErrNilPrivateKey = errors.New("identity: private key is nil")

	// ErrInvalidKeySize 无效的密钥大小
	ErrInvalidKeySize = errors.New("identity: invalid key size")

	// ErrKeyNotFound 密钥文件未找到
	ErrKeyNotFound = errors.New("identity: key not found")

	// ErrInvalidPEM 无效的 PEM 数据
	ErrInvalidPEM = errors.New("identity: invalid PEM data")

	// ErrUnsupportedKeyType 不支持的密钥类型
	ErrUnsupportedKeyType = errors.New("identity: unsupported key type")

	// ErrPassphraseRequired 密钥已加密但未提供口令
	ErrPassphraseRequired = errors.New("identity: key is encrypted, passphrase required")

	// ErrDecryptionFailed 解密失败（口令错误或文件损坏）
	ErrDecryptionFailed = errors.New("identity: decryption failed")
)
