/*
Package session hosts several isolated engines side by side, one per session id.

A session is created lazily on first access through a Factory and lives until it is
closed. Creation and teardown of the same id are serialized by reference-counted locks,
which are garbage collected as soon as no caller holds them.
*/
package session
