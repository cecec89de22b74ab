// Package storage provides the optional history layer used by the bot.
//
// It records poll-cycle outcomes and sent notifications so the daily digest
// (and an operator reading the database) can see what the bot did. It is an
// audit trail only: the polling state itself is held in memory and is never
// restored from here.
package storage
