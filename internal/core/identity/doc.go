// Package identity 提供节点身份管理
//
// 身份是一对 Ed25519 密钥，节点 ID 由公钥派生：
//
//	NodeID = SHA256(公钥字节)
//
// 文本形式为 Base58 编码（见 pkg/types）。对端只需知道 NodeID
// 即可通过发现机制定位本节点，无需交换地址。
//
// 密钥以 PEM 格式持久化在配置目录下（目录 0700、文件 0600），
// 可选地使用口令加密（argon2id 派生密钥 + AES-GCM）。
// 首次运行时 LoadOrCreate 自动生成并保存新密钥。
package identity
