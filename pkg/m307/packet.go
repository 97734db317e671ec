// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

// BuildPacket assembles a 60-byte wire packet: the 4-byte command followed
// by up to 56 data bytes. Longer data is truncated, shorter data is
// zero-filled; the result is always exactly PacketSize bytes.
func BuildPacket(cmd Command, data []byte) []byte {
	packet := make([]byte, PacketSize)
	copy(packet[:CommandSize], cmd[:])
	if data != nil {
		copy(packet[CommandSize:], data)
	}
	return packet
}

// commandOf extracts the command field from a received packet.
func commandOf(packet []byte) Command {
	var cmd Command
	copy(cmd[:], packet[:CommandSize])
	return cmd
}
