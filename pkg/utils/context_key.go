package utils

type ContextKey string
