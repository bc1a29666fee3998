package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dep2p/go-peersh/pkg/lib/log"
	"github.com/dep2p/go-peersh/pkg/types"
)

var logger = log.Logger("core/identity")

// ============================================================================
//                              Identity
// ============================================================================

// Identity 节点身份
//
// 持有 Ed25519 密钥对与派生的 NodeID。
type Identity struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	nodeID     types.NodeID
}

// NewIdentity 从私钥创建身份
func NewIdentity(priv ed25519.PrivateKey) (*Identity, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{
		privateKey: priv,
		publicKey:  pub,
		nodeID:     NodeIDFromPublicKey(pub),
	}, nil
}

// Generate 生成新身份
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成密钥对失败: %w", err)
	}
	return &Identity{
		privateKey: priv,
		publicKey:  pub,
		nodeID:     NodeIDFromPublicKey(pub),
	}, nil
}

// NodeIDFromPublicKey 从公钥派生 NodeID
//
// 使用 SHA256(公钥字节) 作为 NodeID，
// 保证 NodeID 与公钥之间的唯一对应关系。
func NodeIDFromPublicKey(pub ed25519.PublicKey) types.NodeID {
	hash := sha256.Sum256(pub)
	return types.NodeID(hash)
}

// ID 返回节点 ID
func (i *Identity) ID() types.NodeID {
	return i.nodeID
}

// PublicKey 返回公钥
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.publicKey
}

// PrivateKey 返回私钥
func (i *Identity) PrivateKey() ed25519.PrivateKey {
	return i.privateKey
}

// Sign 签名数据
func (i *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(i.privateKey, data)
}

// Verify 验证签名
func (i *Identity) Verify(data, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(i.publicKey, data, signature)
}

// ============================================================================
//                              加载或创建
// ============================================================================

// LoadOrCreate 加载或创建身份
//
// 密钥文件存在时加载（passphrase 用于解密加密过的文件）；
// 不存在且 autoGenerate 为 true 时生成新身份并保存，
// 父目录以 0700 创建，密钥文件以 0600 写入。
func LoadOrCreate(keyFile string, passphrase []byte, autoGenerate bool) (*Identity, error) {
	priv, err := LoadPrivateKeyPEM(keyFile, passphrase)
	if err == nil {
		id, nerr := NewIdentity(priv)
		if nerr != nil {
			return nil, nerr
		}
		logger.Debug("加载身份", "file", keyFile, "id", id.nodeID.ShortString())
		return id, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("加载密钥失败: %w", err)
	}
	if !autoGenerate {
		return nil, err
	}

	id, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0700); err != nil {
		return nil, fmt.Errorf("创建配置目录失败: %w", err)
	}
	if err := SavePrivateKeyPEM(id.privateKey, keyFile, passphrase); err != nil {
		return nil, fmt.Errorf("保存密钥失败: %w", err)
	}
	logger.Info("生成新身份", "file", keyFile, "id", id.nodeID.ShortString())
	return id, nil
}
