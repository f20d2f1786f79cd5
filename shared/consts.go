package shared

const (
	// OwnerReadWriteExec is a standard owner read / write / exec file permission.
	OwnerReadWriteExec = 0o700

	// OwnerReadWrite is a standard owner read / write file permission.
	OwnerReadWrite = 0o600

	// DefaultBufferSize is the size of the read and write buffers of the file streams.
	DefaultBufferSize = 16 << 10
)
