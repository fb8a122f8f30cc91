package common

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	NonceSize        int = chacha20poly1305.NonceSizeX
	KeySize          int = chacha20poly1305.KeySize
	SecureHeaderSize int = NonceSize + 8 + 4
)

// SecureOverhead is what sealing adds to an encoded datagram.
const SecureOverhead = SecureHeaderSize + chacha20poly1305.Overhead

const MaxSecurePacketSize = SecureOverhead + DatagramSize

var ErrDecrypt = errors.New("could not open secure packet")

type SessionID [8]byte

// SecurePacket seals one encoded TFTP datagram with XChaCha20-Poly1305.
//
//	24 bytes   8 bytes    4 bytes (LE)    n bytes
//	-----------------------------------------------
//	| Nonce |  Session  |  DataLength  |  Sealed   |
//	-----------------------------------------------
type SecurePacket struct {
	Nonce         [NonceSize]byte
	Sid           SessionID
	DataLength    uint32
	EncryptedData []byte
}

// NewSymmetricSecurePacket encodes pck and seals it under key. The session
// ID is bound to the ciphertext as additional data.
func NewSymmetricSecurePacket(key [KeySize]byte, sid SessionID, pck Packet) (*SecurePacket, error) {
	data, err := pck.ToBytes()
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}

	var nonce [NonceSize]byte
	if _, err = rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "could not generate nonce")
	}

	encrypted := aead.Seal(nil, nonce[:], data, sid[:])

	return &SecurePacket{
		Nonce:         nonce,
		Sid:           sid,
		DataLength:    uint32(len(encrypted)),
		EncryptedData: encrypted,
	}, nil
}

func SecurePacketFromBytes(bytes []byte) (*SecurePacket, error) {
	if len(bytes) < SecureHeaderSize {
		return nil, errors.Wrap(ErrTruncated, "secure packet header")
	}

	length := binary.LittleEndian.Uint32(bytes[32:36])
	if SecureHeaderSize+int(length) > MaxSecurePacketSize {
		return nil, errors.New("secure packet too large")
	}
	if SecureHeaderSize+int(length) > len(bytes) {
		return nil, errors.Wrap(ErrTruncated, "secure packet data")
	}

	enc := make([]byte, length)
	copy(enc, bytes[SecureHeaderSize:SecureHeaderSize+int(length)])

	return &SecurePacket{
		Nonce:         [NonceSize]byte(bytes[0:24]),
		Sid:           SessionID(bytes[24:32]),
		DataLength:    length,
		EncryptedData: enc,
	}, nil
}

// ToBytes writes the length of EncryptedData, not DataLength, into the header.
func (secPck *SecurePacket) ToBytes() []byte {
	arr := make([]byte, SecureHeaderSize, SecureHeaderSize+len(secPck.EncryptedData))
	copy(arr[0:NonceSize], secPck.Nonce[:])
	copy(arr[NonceSize:NonceSize+8], secPck.Sid[:])
	binary.LittleEndian.PutUint32(arr[NonceSize+8:SecureHeaderSize], uint32(len(secPck.EncryptedData)))

	return append(arr, secPck.EncryptedData...)
}

// ExtractPacket authenticates and decrypts the datagram, then parses it.
func (secPck *SecurePacket) ExtractPacket(key [KeySize]byte) (Packet, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}

	data, err := aead.Open(nil, secPck.Nonce[:], secPck.EncryptedData, secPck.Sid[:])
	if err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}

	return Parse(data)
}
