package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// PEM 类型常量
const (
	pemTypePrivate          = "ED25519 PRIVATE KEY"
	pemTypeEncryptedPrivate = "ENCRYPTED ED25519 PRIVATE KEY"
)

// 加密数据布局：salt(16) || nonce(12) || ciphertext
const (
	saltSize  = 16
	nonceSize = 12

	// Argon2id 参数
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// ============================================================================
//                              私钥持久化
// ============================================================================

// SavePrivateKeyPEM 保存私钥到 PEM 文件
//
// passphrase 非空时使用口令加密存储（PEM 块内容为
// salt||nonce||ciphertext）。使用原子写操作（临时文件 + rename）
// 防止部分写入导致的文件损坏。文件权限 0600，仅所有者可读写。
func SavePrivateKeyPEM(key ed25519.PrivateKey, path string, passphrase []byte) error {
	if key == nil {
		return ErrNilPrivateKey
	}
	if len(key) != ed25519.PrivateKeySize {
		return ErrInvalidKeySize
	}

	block := &pem.Block{
		Type:  pemTypePrivate,
		Bytes: key,
	}
	if len(passphrase) > 0 {
		encrypted, err := encryptKey(key, passphrase)
		if err != nil {
			return err
		}
		block = &pem.Block{
			Type:  pemTypeEncryptedPrivate,
			Bytes: encrypted,
		}
	}

	data := pem.EncodeToMemory(block)
	return atomicWriteFile(path, data, 0600)
}

// LoadPrivateKeyPEM 从 PEM 文件加载私钥
//
// 加密的密钥文件需要提供口令，否则返回 ErrPassphraseRequired。
func LoadPrivateKeyPEM(path string, passphrase []byte) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 密钥路径来自配置
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	switch block.Type {
	case pemTypePrivate:
		if len(block.Bytes) != ed25519.PrivateKeySize {
			return nil, ErrInvalidKeySize
		}
		return ed25519.PrivateKey(block.Bytes), nil
	case pemTypeEncryptedPrivate:
		if len(passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		raw, err := decryptKey(block.Bytes, passphrase)
		if err != nil {
			return nil, err
		}
		if len(raw) != ed25519.PrivateKeySize {
			return nil, ErrInvalidKeySize
		}
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, ErrUnsupportedKeyType
	}
}

// ============================================================================
//                              加密辅助函数
// ============================================================================

// encryptKey 使用口令加密密钥数据
//
// 口令经 argon2id 派生为 AES-256 密钥，AES-GCM 加密。
// 输出布局：salt || nonce || ciphertext。
func encryptKey(plaintext, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, saltSize+nonceSize+len(ciphertext))
	copy(result[:saltSize], salt)
	copy(result[saltSize:saltSize+nonceSize], nonce)
	copy(result[saltSize+nonceSize:], ciphertext)

	return result, nil
}

// decryptKey 使用口令解密密钥数据
//
// 口令错误时 GCM 认证失败，返回 ErrDecryptionFailed。
func decryptKey(data, passphrase []byte) ([]byte, error) {
	if len(data) < saltSize+nonceSize {
		return nil, ErrDecryptionFailed
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ============================================================================
//                              原子写操作
// ============================================================================

// atomicWriteFile 原子写文件
//
// 使用临时文件 + rename 策略，防止部分写入导致的文件损坏。
// 流程：
//  1. 写入临时文件（同目录下，前缀 .tmp-）
//  2. 同步到磁盘
//  3. 原子 rename 到目标路径
//
// 如果任何步骤失败，目标文件保持不变。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) // 清理时忽略错误
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("同步临时文件失败: %w", err)
	}

	if err := tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("原子 rename 失败: %w", err)
	}

	success = true
	return nil
}
