package config

import "github.com/sirupsen/logrus"

// SetupLogging applies the log level and format.
func SetupLogging(c *Config) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if c.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
