// Package options holds the user-facing settings and loads them from viper.
package options
